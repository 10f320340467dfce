// Package policy guards destructive operations behind confirmation.
package policy

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	clierr "github.com/ggonzalez94/rgbldk-cli/internal/errors"
)

// Prompt is where confirmation is asked and answered. Interactive reports
// whether In is attached to a terminal.
type Prompt struct {
	In          io.Reader
	Out         io.Writer
	Interactive bool
}

// Confirm returns nil when the operation may proceed: yes was passed, or an
// interactive user typed "yes". Without a terminal it refuses before any
// request is made.
func Confirm(p Prompt, yes bool, message string) error {
	if yes {
		return nil
	}
	if !p.Interactive || p.In == nil {
		return clierr.New(clierr.CodeUsage, message+"\nRefusing to proceed non-interactively without --yes.")
	}
	if p.Out != nil {
		_, _ = fmt.Fprintf(p.Out, "%s Type 'yes' to continue:\n", message)
	}
	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && line == "" {
		return clierr.New(clierr.CodeAborted, "aborted")
	}
	if strings.TrimSpace(line) != "yes" {
		return clierr.New(clierr.CodeAborted, "aborted")
	}
	return nil
}
