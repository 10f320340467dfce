package app

import (
	"context"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	clierr "github.com/ggonzalez94/rgbldk-cli/internal/errors"
	"github.com/ggonzalez94/rgbldk-cli/internal/events"
	"github.com/ggonzalez94/rgbldk-cli/internal/journal"
	"github.com/ggonzalez94/rgbldk-cli/internal/model"
	"github.com/ggonzalez94/rgbldk-cli/internal/out"
)

func (s *runtimeState) newEventsCommand() *cobra.Command {
	root := &cobra.Command{Use: "events", Short: "Node event queue"}

	var nextJournal bool
	next := &cobra.Command{
		Use:   "next",
		Short: "Wait for the next event without acknowledging it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ch := events.New(s.daemon, s.logger)
			ev, err := out.WithSpinner(s.render, "Waiting for event...", func() (model.Event, error) {
				return ch.Next(cmd.Context())
			})
			if err != nil {
				return err
			}
			record, err := s.eventRecorder(nextJournal)
			if err != nil {
				return err
			}
			return s.handleEvent(cmd.Context(), ev, record)
		},
	}
	next.Flags().BoolVar(&nextJournal, "journal", false, "Record the event in the local journal")
	root.AddCommand(next)

	root.AddCommand(&cobra.Command{
		Use:   "handled",
		Short: "Acknowledge the current event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := s.daemon.EventHandled(cmd.Context())
			if err != nil {
				return err
			}
			return s.render.Emit(rawValue(raw), func() error {
				s.render.Println("Marked handled.")
				return nil
			})
		},
	})

	var (
		count        uint64
		watchJournal bool
	)
	watch := &cobra.Command{
		Use:   "watch",
		Short: "Print and acknowledge events as they arrive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			record, err := s.eventRecorder(watchJournal)
			if err != nil {
				return err
			}
			ch := events.New(s.daemon, s.logger)
			opts := events.WatchOptions{
				Count: optUint64(cmd, "count", count),
				AroundWait: func(wait func() (model.Event, error)) (model.Event, error) {
					return out.WithSpinner(s.render, "Waiting for events...", wait)
				},
			}
			stats, err := ch.Watch(cmd.Context(), opts, func(ctx context.Context, ev model.Event) error {
				return s.handleEvent(ctx, ev, record)
			})
			s.logger.Debug("event watch finished", "delivered", stats.Delivered, "acknowledged", stats.Acknowledged)
			return err
		},
	}
	watch.Flags().Uint64Var(&count, "count", 0, "Stop after N events (default: run until interrupted)")
	watch.Flags().BoolVar(&watchJournal, "journal", false, "Record each event in the local journal before acknowledging it")
	root.AddCommand(watch)

	var limit int
	history := &cobra.Command{
		Use:   "history",
		Short: "List events recorded in the local journal, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return clierr.New(clierr.CodeUsage, "--limit must be positive")
			}
			store, err := s.openJournal()
			if err != nil {
				return err
			}
			entries, err := store.List(cmd.Context(), limit)
			if err != nil {
				return clierr.Wrap(clierr.CodeInternal, "read event journal", err)
			}
			return s.render.Emit(entries, func() error {
				s.renderHistory(entries)
				return nil
			})
		},
	}
	history.Flags().IntVar(&limit, "limit", 20, "Maximum number of events to list")
	root.AddCommand(history)

	return root
}

type recordFunc func(ctx context.Context, ev model.Event)

// eventRecorder returns nil unless journaling was requested. Journal write
// failures are logged and never block acknowledgement.
func (s *runtimeState) eventRecorder(enabled bool) (recordFunc, error) {
	if !enabled {
		return nil, nil
	}
	store, err := s.openJournal()
	if err != nil {
		return nil, err
	}
	target := s.target.URL
	return func(ctx context.Context, ev model.Event) {
		if err := store.Record(ctx, target, ev); err != nil {
			s.logger.Warn("journal write failed", "kind", ev.Kind(), "err", err)
		}
	}, nil
}

func (s *runtimeState) handleEvent(ctx context.Context, ev model.Event, record recordFunc) error {
	if err := s.render.Event(ev); err != nil {
		return err
	}
	if record != nil {
		record(ctx, ev)
	}
	return nil
}

func (s *runtimeState) renderHistory(entries []journal.Entry) {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		line := e.Kind
		if ev, err := e.Event(); err == nil {
			line = out.EventLine(ev)
		}
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10),
			humanize.Time(e.ReceivedAt),
			e.Target,
			line,
		})
	}
	s.render.Table([]string{"#", "Received", "Target", "Event"}, rows)
}
