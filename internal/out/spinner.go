package out

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/x/ansi"
)

const spinnerInterval = 120 * time.Millisecond

var spinnerFrames = []string{"|", "/", "-", "\\"}

// Spin runs fn while repainting "msg frame" on w. The ticker is stopped and
// the line cleared before Spin returns, so nothing printed afterwards can
// interleave with it.
func Spin[T any](w io.Writer, msg string, interval time.Duration, fn func() (T, error)) (T, error) {
	if interval <= 0 {
		interval = spinnerInterval
	}
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			case <-ticker.C:
				_, _ = fmt.Fprintf(w, "\r%s %s", msg, spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
	defer func() {
		close(stop)
		wg.Wait()
		_, _ = io.WriteString(w, "\r"+ansi.EraseEntireLine)
	}()
	return fn()
}

// WithSpinner wraps a blocking call in a spinner on stderr, only in text
// mode with a terminal stderr.
func WithSpinner[T any](r *Renderer, msg string, fn func() (T, error)) (T, error) {
	if r.IsJSON() || !r.opts.Spinner {
		return fn()
	}
	return Spin(r.stderr, msg, spinnerInterval, fn)
}
