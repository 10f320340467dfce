package out

import (
	"bytes"
	"errors"
	"math"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/ggonzalez94/rgbldk-cli/internal/model"
)

func TestFormatSats(t *testing.T) {
	cases := []struct {
		sats  uint64
		force bool
		want  string
	}{
		{0, false, "0 sats"},
		{999, false, "999 sats"},
		{1_000, false, "1,000 sats"},
		{99_999_999, false, "99,999,999 sats"},
		{100_000_000, false, "1.0 BTC"},
		{150_000_000, false, "1.5 BTC"},
		{250_000_000, false, "2.5 BTC"},
		{250_000_000, true, "250,000,000 sats"},
		{123_456_789_012, false, "1234.56789012 BTC"},
		{100_000_001, false, "1.00000001 BTC"},
	}
	for _, tc := range cases {
		if got := FormatSats(tc.sats, tc.force); got != tc.want {
			t.Errorf("FormatSats(%d, %v) = %q, want %q", tc.sats, tc.force, got, tc.want)
		}
	}
}

func TestFormatSatsShape(t *testing.T) {
	satsShape := regexp.MustCompile(`^\d{1,3}(,\d{3})* sats$`)
	btcShape := regexp.MustCompile(`^\d+\.\d{1,8} BTC$`)
	for _, v := range []uint64{1, 12, 12_345, 1_234_567, 99_999_999, 100_000_000, 2_100_000_000_000_000, math.MaxUint64} {
		got := FormatSats(v, false)
		shape := satsShape
		if v >= 100_000_000 {
			shape = btcShape
		}
		if !shape.MatchString(got) {
			t.Errorf("FormatSats(%d) = %q has the wrong shape", v, got)
		}
		if strings.HasSuffix(got, "0 BTC") && !strings.HasSuffix(got, ".0 BTC") {
			t.Errorf("FormatSats(%d) = %q keeps trailing zeros", v, got)
		}
	}
}

func TestComma(t *testing.T) {
	if got := Comma(math.MaxUint64); got != "18,446,744,073,709,551,615" {
		t.Fatalf("unexpected grouping: %s", got)
	}
	if got := Comma(1234567); got != "1,234,567" {
		t.Fatalf("unexpected grouping: %s", got)
	}
}

func TestFormatSatsDelta(t *testing.T) {
	if got := FormatSatsDelta(5, 5); got != "0 sats" {
		t.Fatalf("zero delta: %s", got)
	}
	if got := FormatSatsDelta(1_000, 3_500); got != "+2,500 sats" {
		t.Fatalf("positive delta: %s", got)
	}
	if got := FormatSatsDelta(300_000_000, 100_000_000); got != "-2.0 BTC" {
		t.Fatalf("negative delta: %s", got)
	}
}

func TestTruncateID(t *testing.T) {
	for _, s := range []string{"", "short", strings.Repeat("a", 19)} {
		if TruncateID(s) != s {
			t.Fatalf("expected identity for %q", s)
		}
	}
	for n := 20; n < 80; n += 7 {
		s := strings.Repeat("ab", n)[:n]
		got := TruncateID(s)
		if len(got) != 19 || got != s[:8]+"..."+s[n-8:] {
			t.Fatalf("TruncateID(%q) = %q", s, got)
		}
	}
}

func TestCheckLabel(t *testing.T) {
	cases := map[string]string{
		"http_server":             "HTTP Server",
		"node_is_running":         "Lightning Node",
		"p2p_is_listening":        "P2P Listener",
		"best_block_height_known": "Best Block Height",
		"rgb_api_ready":           "RGB API Ready",
		"ldk__sync":               "LDK Sync",
		"wallet":                  "Wallet",
		"___":                     "___",
	}
	for in, want := range cases {
		if got := CheckLabel(in); got != want {
			t.Errorf("CheckLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEventLine(t *testing.T) {
	pid := "p1"
	fee := uint64(1500)
	reason := "CounterpartyForceClosed"
	cases := []struct {
		ev   model.Event
		want string
	}{
		{model.PaymentSuccessful{PaymentID: &pid, FeePaidMsat: &fee}, "PaymentSuccessful payment_id=p1 fee_paid=1,500 msat"},
		{model.PaymentSuccessful{}, "PaymentSuccessful payment_id=- fee_paid=-"},
		{model.PaymentFailedEvent{PaymentID: &pid}, "PaymentFailed payment_id=p1"},
		{model.PaymentReceived{AmountMsat: 1_000_000}, "PaymentReceived payment_id=- amount=1,000,000 msat"},
		{model.ChannelPending{FundingTxo: model.OutPoint{TxID: "ab", Vout: 1}}, "ChannelPending funding_txo=ab:1"},
		{model.ChannelReady{UserChannelID: "u1"}, "ChannelReady user_channel_id=u1"},
		{model.ChannelClosed{ChannelID: "c1", UserChannelID: "u1", Reason: &reason}, "ChannelClosed user_channel_id=u1 channel_id=c1 counterparty_node_id=- reason=CounterpartyForceClosed"},
		{model.OtherEvent{Name: "SpliceLocked"}, "Other kind=SpliceLocked"},
	}
	for _, tc := range cases {
		if got := EventLine(tc.ev); got != tc.want {
			t.Errorf("EventLine(%#v) = %q, want %q", tc.ev, got, tc.want)
		}
	}
}

func TestSpinClearsLineBeforeReturning(t *testing.T) {
	var buf bytes.Buffer
	got, err := Spin(&buf, "Waiting for event...", 10*time.Millisecond, func() (int, error) {
		time.Sleep(60 * time.Millisecond)
		return 7, nil
	})
	if err != nil || got != 7 {
		t.Fatalf("unexpected result %d %v", got, err)
	}
	s := buf.String()
	if !strings.Contains(s, "\rWaiting for event... |") {
		t.Fatalf("expected spinner frames, got %q", s)
	}
	if !strings.HasSuffix(s, "\r\x1b[2K") {
		t.Fatalf("expected cleared line at the end, got %q", s)
	}
}

func TestSpinStopsOnError(t *testing.T) {
	var buf bytes.Buffer
	boom := errors.New("boom")
	_, err := Spin(&buf, "x", time.Hour, func() (struct{}, error) { return struct{}{}, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected error passthrough, got %v", err)
	}
	if buf.String() != "\r\x1b[2K" {
		t.Fatalf("unexpected spinner output: %q", buf.String())
	}
}

func TestWithSpinnerDisabledWritesNothing(t *testing.T) {
	r, _, stderr := newRenderer(Options{Spinner: false})
	if _, err := WithSpinner(r, "x", func() (int, error) { return 1, nil }); err != nil {
		t.Fatal(err)
	}
	if stderr.Len() != 0 {
		t.Fatalf("spinner must stay silent when disabled: %q", stderr.String())
	}
}
