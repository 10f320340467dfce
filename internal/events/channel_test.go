package events

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/ggonzalez94/rgbldk-cli/internal/daemon"
	"github.com/ggonzalez94/rgbldk-cli/internal/daemontest"
	"github.com/ggonzalez94/rgbldk-cli/internal/httpx"
	"github.com/ggonzalez94/rgbldk-cli/internal/model"
)

const (
	evReceived = `{"type":"PaymentReceived","data":{"payment_id":"p1","amount_msat":1000}}`
	evReady    = `{"type":"ChannelReady","data":{"user_channel_id":"u1"}}`
)

func newChannel(t *testing.T, q *daemontest.EventQueue, logs *bytes.Buffer) (*Channel, *daemontest.Server) {
	t.Helper()
	srv := daemontest.New(t)
	q.Install(srv)
	var logger *slog.Logger
	if logs != nil {
		logger = slog.New(slog.NewTextHandler(logs, nil))
	}
	return New(daemon.New(httpx.New(2*time.Second, nil), srv.URL), logger), srv
}

func count(n uint64) *uint64 { return &n }

func TestNextRedeliversUntilHandled(t *testing.T) {
	q := &daemontest.EventQueue{}
	q.Push(evReceived, evReady)
	ch, _ := newChannel(t, q, nil)
	ctx := context.Background()

	first, err := ch.Next(ctx)
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	second, err := ch.Next(ctx)
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected redelivery of the same event, got %#v then %#v", first, second)
	}

	if err := ch.Handled(ctx); err != nil {
		t.Fatalf("Handled failed: %v", err)
	}
	third, err := ch.Next(ctx)
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if _, ok := third.(model.ChannelReady); !ok {
		t.Fatalf("expected next event after handled, got %#v", third)
	}
}

func TestWatchStopsAfterCount(t *testing.T) {
	q := &daemontest.EventQueue{Refill: evReady}
	ch, srv := newChannel(t, q, nil)

	var seen []string
	stats, err := ch.Watch(context.Background(), WatchOptions{Count: count(3)}, func(_ context.Context, ev model.Event) error {
		seen = append(seen, ev.Kind())
		return nil
	})
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	if stats.Delivered != 3 || stats.Acknowledged != 3 || len(seen) != 3 {
		t.Fatalf("unexpected stats: %+v seen=%v", stats, seen)
	}
	if srv.Count(http.MethodPost, "/api/v1/events/wait_next") != 3 || srv.Count(http.MethodPost, "/api/v1/events/handled") != 3 {
		t.Fatalf("unexpected request log: %+v", srv.Requests())
	}
}

func TestWatchHandlesBeforeAcknowledging(t *testing.T) {
	q := &daemontest.EventQueue{Refill: evReady}
	ch, srv := newChannel(t, q, nil)

	_, err := ch.Watch(context.Background(), WatchOptions{Count: count(1)}, func(_ context.Context, _ model.Event) error {
		if n := srv.Count(http.MethodPost, "/api/v1/events/handled"); n != 0 {
			t.Fatalf("event acknowledged before handling (%d acks)", n)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
}

func TestWatchContinuesWhenAcknowledgementFails(t *testing.T) {
	q := &daemontest.EventQueue{Refill: evReady, FailHandled: func(call int) bool { return call == 2 }}
	var logs bytes.Buffer
	ch, _ := newChannel(t, q, &logs)

	stats, err := ch.Watch(context.Background(), WatchOptions{Count: count(2)}, func(context.Context, model.Event) error { return nil })
	if err != nil {
		t.Fatalf("ack failure must not be fatal: %v", err)
	}
	if stats.Delivered != 2 || stats.Acknowledged != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if !strings.Contains(logs.String(), "event acknowledgement failed") {
		t.Fatalf("expected warning, got %q", logs.String())
	}
}

func TestWatchWithoutCountStopsOnWaitFailure(t *testing.T) {
	q := &daemontest.EventQueue{}
	q.Push(evReceived, evReady)
	ch, _ := newChannel(t, q, nil)

	stats, err := ch.Watch(context.Background(), WatchOptions{}, func(context.Context, model.Event) error { return nil })
	if err == nil {
		t.Fatal("expected wait_next failure once the queue is drained")
	}
	if stats.Delivered != 2 {
		t.Fatalf("expected two deliveries before failure, got %+v", stats)
	}
}

func TestWatchHandlerErrorSkipsAcknowledgement(t *testing.T) {
	q := &daemontest.EventQueue{Refill: evReady}
	ch, srv := newChannel(t, q, nil)
	boom := errors.New("render failed")

	_, err := ch.Watch(context.Background(), WatchOptions{Count: count(5)}, func(context.Context, model.Event) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected handler error, got %v", err)
	}
	if srv.Count(http.MethodPost, "/api/v1/events/handled") != 0 {
		t.Fatal("unprocessed event must not be acknowledged")
	}
}

func TestWatchAroundWaitWrapsEveryCall(t *testing.T) {
	q := &daemontest.EventQueue{Refill: evReady}
	ch, _ := newChannel(t, q, nil)
	wraps := 0

	_, err := ch.Watch(context.Background(), WatchOptions{
		Count: count(2),
		AroundWait: func(wait func() (model.Event, error)) (model.Event, error) {
			wraps++
			return wait()
		},
	}, func(context.Context, model.Event) error { return nil })
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	if wraps != 2 {
		t.Fatalf("expected 2 wrapped waits, got %d", wraps)
	}
}
