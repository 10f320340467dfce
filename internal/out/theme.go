package out

import (
	"io"
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

type Mode int

const (
	ModeText Mode = iota
	ModeJSON
)

func (m Mode) String() string {
	if m == ModeJSON {
		return "json"
	}
	return "text"
}

// ResolveMode maps auto|text|json; auto picks text on a terminal.
func ResolveMode(setting string, stdoutTTY bool) Mode {
	switch setting {
	case "json":
		return ModeJSON
	case "text":
		return ModeText
	default:
		if stdoutTTY {
			return ModeText
		}
		return ModeJSON
	}
}

// Theme is resolved once per invocation and only affects text output.
type Theme struct {
	Color   bool
	Unicode bool
	OK      string
	Bad     string
}

func NewTheme(color, unicode bool) Theme {
	t := Theme{Color: color, Unicode: unicode, OK: "[OK]", Bad: "[X]"}
	if unicode {
		t.OK, t.Bad = "✔", "✘"
	}
	return t
}

// Terminal describes the capabilities of the output stream.
type Terminal struct {
	TTY     bool
	Profile termenv.Profile
}

// Probe inspects w. Anything that is not a terminal file reports Ascii.
func Probe(w io.Writer) Terminal {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return Terminal{Profile: termenv.Ascii}
	}
	return Terminal{TTY: true, Profile: termenv.NewOutput(f).ColorProfile()}
}

// IsTerminal reports whether r or w is an interactive terminal file.
func IsTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// ResolveTheme applies --color: always and never are final; auto needs a
// color-capable terminal and an unset NO_COLOR.
func ResolveTheme(colorMode string, stdout Terminal, getenv func(string) string) Theme {
	var color bool
	switch colorMode {
	case "always":
		color = true
	case "never":
		color = false
	default:
		color = stdout.TTY && stdout.Profile != termenv.Ascii && getenv("NO_COLOR") == ""
	}
	return NewTheme(color, stdout.TTY)
}
