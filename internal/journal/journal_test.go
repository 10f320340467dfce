package journal

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ggonzalez94/rgbldk-cli/internal/model"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	tmp := t.TempDir()
	store, err := Open(filepath.Join(tmp, "events.db"), filepath.Join(tmp, "events.lock"))
	if err != nil {
		t.Fatalf("Open journal failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndListNewestFirst(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := store.Record(ctx, "http://n:1", model.ChannelReady{UserChannelID: "u1"}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := store.Record(ctx, "http://n:1", model.OtherEvent{Name: "SpliceLocked"}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	entries, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 2 || entries[0].Kind != "Other" || entries[1].Kind != "ChannelReady" {
		t.Fatalf("unexpected entries: %+v", entries)
	}

	ev, err := entries[1].Event()
	if err != nil {
		t.Fatalf("Event decode failed: %v", err)
	}
	if ready, ok := ev.(model.ChannelReady); !ok || ready.UserChannelID != "u1" {
		t.Fatalf("unexpected event: %#v", ev)
	}
	if other, _ := entries[0].Event(); other.(model.OtherEvent).Name != "SpliceLocked" {
		t.Fatalf("unexpected other event: %#v", other)
	}
}

func TestRecordKeepsUnknownEventVerbatim(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	wire := `{"type":"SomethingNew","data":{"x":1,"payment_id":"p9"}}`
	ev, err := model.DecodeEvent([]byte(wire))
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}
	if err := store.Record(ctx, "t", ev); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	entries, err := store.List(ctx, 1)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Kind != "Other" || string(entries[0].Data) != wire {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestListHonoursLimit(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := store.Record(ctx, "t", model.ChannelReady{UserChannelID: fmt.Sprintf("u%d", i)}); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}
	entries, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	ev, _ := entries[0].Event()
	if ev.(model.ChannelReady).UserChannelID != "u4" {
		t.Fatalf("expected newest entry first, got %#v", ev)
	}
}

func TestConcurrentRecord(t *testing.T) {
	tmp := t.TempDir()
	dbPath := filepath.Join(tmp, "events.db")
	lockPath := filepath.Join(tmp, "events.lock")

	const workers = 8
	const iterations = 10

	var wg sync.WaitGroup
	errCh := make(chan error, workers)
	for worker := 0; worker < workers; worker++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			store, err := Open(dbPath, lockPath)
			if err != nil {
				errCh <- fmt.Errorf("worker %d open: %w", workerID, err)
				return
			}
			defer store.Close()
			for i := 0; i < iterations; i++ {
				if err := store.Record(context.Background(), "t", model.PaymentFailedEvent{}); err != nil {
					errCh <- fmt.Errorf("worker %d record %d: %w", workerID, i, err)
					return
				}
			}
		}(worker)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Fatal(err)
	}

	verify, err := Open(dbPath, lockPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer verify.Close()
	entries, err := verify.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != workers*iterations {
		t.Fatalf("expected %d entries, got %d", workers*iterations, len(entries))
	}
}
