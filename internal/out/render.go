package out

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"

	clierr "github.com/ggonzalez94/rgbldk-cli/internal/errors"
	"github.com/ggonzalez94/rgbldk-cli/internal/model"
)

type Options struct {
	Mode       Mode
	Theme      Theme
	Pretty     bool
	NoTruncate bool
	// Spinner enables the progress indicator; callers set it when stderr is
	// a terminal.
	Spinner bool
}

// Renderer writes results to stdout and diagnostics to stderr in the mode
// chosen for the invocation. It holds no state besides its options.
type Renderer struct {
	stdout io.Writer
	stderr io.Writer
	opts   Options
	lg     *lipgloss.Renderer
}

func New(stdout, stderr io.Writer, opts Options) *Renderer {
	lg := lipgloss.NewRenderer(stdout)
	if opts.Theme.Color {
		lg.SetColorProfile(termenv.ANSI)
	} else {
		lg.SetColorProfile(termenv.Ascii)
	}
	return &Renderer{stdout: stdout, stderr: stderr, opts: opts, lg: lg}
}

func (r *Renderer) Mode() Mode        { return r.opts.Mode }
func (r *Renderer) IsJSON() bool      { return r.opts.Mode == ModeJSON }
func (r *Renderer) Theme() Theme      { return r.opts.Theme }
func (r *Renderer) Stdout() io.Writer { return r.stdout }
func (r *Renderer) Stderr() io.Writer { return r.stderr }

// Emit writes v as JSON in JSON mode and runs text otherwise.
func (r *Renderer) Emit(v any, text func() error) error {
	if r.IsJSON() {
		return r.JSON(v)
	}
	return text()
}

// JSON serialises v as-is, indented with --pretty.
func (r *Renderer) JSON(v any) error {
	return writeJSON(r.stdout, v, r.opts.Pretty)
}

func writeJSON(w io.Writer, v any, pretty bool) error {
	var (
		buf []byte
		err error
	)
	if pretty {
		buf, err = json.MarshalIndent(v, "", "  ")
	} else {
		buf, err = json.Marshal(v)
	}
	if err != nil {
		return clierr.Wrap(clierr.CodeInternal, "encode output", err)
	}
	buf = append(buf, '\n')
	_, err = w.Write(buf)
	return err
}

func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.stdout, a...)
}

func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.stdout, format, a...)
}

// Notef writes a secondary line to stderr so stdout stays pipeable.
func (r *Renderer) Notef(format string, a ...any) {
	_, _ = fmt.Fprintf(r.stderr, format+"\n", a...)
}

// ID applies display truncation to an id-like value.
func (r *Renderer) ID(s string) string {
	if r.opts.NoTruncate {
		return s
	}
	return TruncateID(s)
}

func (r *Renderer) Green(s string) string  { return r.paint(s, "2") }
func (r *Renderer) Yellow(s string) string { return r.paint(s, "3") }
func (r *Renderer) Red(s string) string    { return r.paint(s, "1") }

func (r *Renderer) paint(s, color string) string {
	if !r.opts.Theme.Color {
		return s
	}
	return r.lg.NewStyle().Foreground(lipgloss.Color(color)).Render(s)
}

// Glyph returns the themed ok/bad marker, colored when enabled.
func (r *Renderer) Glyph(ok bool) string {
	if ok {
		return r.Green(r.opts.Theme.OK)
	}
	return r.Red(r.opts.Theme.Bad)
}

// Table prints a bordered table. Columns listed in rightAlign are
// right-aligned.
func (r *Renderer) Table(headers []string, rows [][]string, rightAlign ...int) {
	border := lipgloss.ASCIIBorder()
	if r.opts.Theme.Unicode {
		border = lipgloss.NormalBorder()
	}
	right := make(map[int]bool, len(rightAlign))
	for _, c := range rightAlign {
		right[c] = true
	}
	cell := r.lg.NewStyle().Padding(0, 1)
	header := cell.Bold(r.opts.Theme.Color)

	t := table.New().
		Border(border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			if right[col] {
				return cell.Align(lipgloss.Right)
			}
			return cell
		})
	_, _ = fmt.Fprintln(r.stdout, t.Render())
}

// Fields prints a single record as a Field/Value table.
func (r *Renderer) Fields(rows [][]string) {
	r.Table([]string{"Field", "Value"}, rows)
}

// Checks prints an aggregate status line followed by one line per check in
// server order. ok is printed as given, never derived from checks.
func (r *Renderer) Checks(title string, ok bool, checks []model.HealthCheck) {
	r.ChecksTo(r.stdout, title, ok, checks)
}

func (r *Renderer) ChecksTo(w io.Writer, title string, ok bool, checks []model.HealthCheck) {
	_, _ = fmt.Fprintf(w, "%s %s\n", r.Glyph(ok), title)
	for _, c := range checks {
		line := "  " + r.Glyph(c.OK) + " " + CheckLabel(c.Name)
		if c.Detail != nil && *c.Detail != "" {
			line += ": " + *c.Detail
		}
		_, _ = fmt.Fprintln(w, line)
		if c.Hint != nil {
			_, _ = fmt.Fprintf(w, "      hint: %s\n", *c.Hint)
		}
	}
}

// Event prints ev in JSON mode as its {type,data} form, otherwise as a
// single key=value line.
func (r *Renderer) Event(ev model.Event) error {
	if r.IsJSON() {
		return r.JSON(model.EventEnvelope{Event: ev})
	}
	r.Println(EventLine(ev))
	return nil
}

type errorPayload struct {
	Error      string `json:"error"`
	Type       string `json:"type"`
	HTTPStatus int    `json:"http_status,omitempty"`
}

// Error reports err on stderr, as JSON in JSON mode.
func (r *Renderer) Error(err error) {
	if err == nil {
		return
	}
	payload := errorPayload{Error: err.Error(), Type: clierr.CodeInternal.Type()}
	if cliErr, ok := clierr.As(err); ok {
		payload.Type = cliErr.Code.Type()
		payload.HTTPStatus = cliErr.HTTPStatus
	}
	if r.IsJSON() {
		_ = writeJSON(r.stderr, payload, false)
		return
	}
	_, _ = fmt.Fprintln(r.stderr, r.Red(payload.Error))
}
