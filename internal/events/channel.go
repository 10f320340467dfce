package events

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"github.com/ggonzalez94/rgbldk-cli/internal/model"
)

// Source is the daemon side of the event queue.
type Source interface {
	WaitNextEvent(ctx context.Context) (model.Event, error)
	EventHandled(ctx context.Context) (json.RawMessage, error)
}

// Handler processes one event to completion. An event is acknowledged only
// after its handler returns nil.
type Handler func(ctx context.Context, ev model.Event) error

type WatchOptions struct {
	// Count bounds the number of wait/handle/ack cycles; nil watches forever.
	Count *uint64
	// AroundWait wraps each blocking wait_next call, e.g. to run a spinner.
	AroundWait func(wait func() (model.Event, error)) (model.Event, error)
}

type WatchStats struct {
	Delivered    uint64
	Acknowledged uint64
}

// Channel drives the wait_next / handled protocol. It never issues more than
// one wait_next at a time.
type Channel struct {
	src    Source
	logger *slog.Logger
}

func New(src Source, logger *slog.Logger) *Channel {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Channel{src: src, logger: logger}
}

// Next returns the current event. Without an intervening Handled the daemon
// redelivers the same event.
func (c *Channel) Next(ctx context.Context) (model.Event, error) {
	return c.src.WaitNextEvent(ctx)
}

// Handled discards the event most recently returned by Next.
func (c *Channel) Handled(ctx context.Context) error {
	_, err := c.src.EventHandled(ctx)
	return err
}

// Watch repeats wait_next -> handle -> handled. A wait_next or handler error
// ends the loop; a failed acknowledgement is logged and the loop continues.
func (c *Channel) Watch(ctx context.Context, opts WatchOptions, handle Handler) (WatchStats, error) {
	var stats WatchStats
	wait := func() (model.Event, error) { return c.Next(ctx) }

	for opts.Count == nil || stats.Delivered < *opts.Count {
		var (
			ev  model.Event
			err error
		)
		if opts.AroundWait != nil {
			ev, err = opts.AroundWait(wait)
		} else {
			ev, err = wait()
		}
		if err != nil {
			return stats, err
		}
		stats.Delivered++

		if err := handle(ctx, ev); err != nil {
			return stats, err
		}

		if err := c.Handled(ctx); err != nil {
			c.logger.Warn("event acknowledgement failed; continuing", "kind", ev.Kind(), "err", err)
			continue
		}
		stats.Acknowledged++
	}
	return stats, nil
}
