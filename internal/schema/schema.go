// Package schema describes the command tree as data, for scripts and agents
// that drive the CLI without parsing help text.
package schema

import (
	"fmt"
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type Command struct {
	Path        string    `json:"path"`
	Short       string    `json:"short"`
	Args        []string  `json:"args,omitempty"`
	Flags       []Flag    `json:"flags,omitempty"`
	Subcommands []Command `json:"subcommands,omitempty"`
}

type Flag struct {
	Name       string `json:"name"`
	Shorthand  string `json:"shorthand,omitempty"`
	Type       string `json:"type"`
	Usage      string `json:"usage"`
	Default    string `json:"default,omitempty"`
	Required   bool   `json:"required,omitempty"`
	Repeatable bool   `json:"repeatable,omitempty"`
}

// Build describes the command at path (space separated, relative to root),
// or the whole tree when path is empty.
func Build(root *cobra.Command, path string) (Command, error) {
	cmd := root
	for _, part := range strings.Fields(path) {
		next := child(cmd, part)
		if next == nil {
			return Command{}, notFound(cmd, part)
		}
		cmd = next
	}
	return describe(cmd), nil
}

func child(cmd *cobra.Command, name string) *cobra.Command {
	for _, c := range cmd.Commands() {
		if c.Name() == name || slices.Contains(c.Aliases, name) {
			return c
		}
	}
	return nil
}

func notFound(parent *cobra.Command, name string) error {
	best, bestDist := "", 3
	for _, c := range parent.Commands() {
		if c.Hidden {
			continue
		}
		if d := levenshtein.ComputeDistance(name, c.Name()); d < bestDist {
			best, bestDist = c.Name(), d
		}
	}
	if best != "" {
		return fmt.Errorf("unknown command %q under %q (did you mean %q?)", name, parent.CommandPath(), best)
	}
	return fmt.Errorf("unknown command %q under %q", name, parent.CommandPath())
}

func describe(cmd *cobra.Command) Command {
	out := Command{
		Path:  cmd.CommandPath(),
		Short: cmd.Short,
		Args:  positional(cmd.Use),
		Flags: flags(cmd),
	}
	for _, sub := range cmd.Commands() {
		if sub.Hidden || sub.Name() == "help" || sub.Name() == "completion" {
			continue
		}
		out.Subcommands = append(out.Subcommands, describe(sub))
	}
	return out
}

// positional returns the argument placeholders of a Use line, e.g.
// "connect NODE_ID ADDR" -> [NODE_ID ADDR].
func positional(use string) []string {
	fields := strings.Fields(use)
	if len(fields) < 2 {
		return nil
	}
	return fields[1:]
}

func flags(cmd *cobra.Command) []Flag {
	var items []Flag
	cmd.NonInheritedFlags().VisitAll(func(f *pflag.Flag) {
		if f.Hidden || f.Name == "help" {
			return
		}
		_, required := f.Annotations[cobra.BashCompOneRequiredFlag]
		items = append(items, Flag{
			Name:       f.Name,
			Shorthand:  f.Shorthand,
			Type:       f.Value.Type(),
			Usage:      f.Usage,
			Default:    defaultValue(f),
			Required:   required,
			Repeatable: isRepeatable(f.Value),
		})
	})
	return items
}

func defaultValue(f *pflag.Flag) string {
	switch f.DefValue {
	case "", "0", "false", "[]":
		return ""
	}
	return f.DefValue
}

func isRepeatable(v pflag.Value) bool {
	if _, ok := v.(pflag.SliceValue); ok {
		return true
	}
	return strings.HasPrefix(v.String(), "[")
}
