package model

import (
	"encoding/json"
	"testing"
)

func TestDecodeEventVariants(t *testing.T) {
	ev, err := DecodeEvent([]byte(`{"type":"PaymentReceived","data":{"payment_id":"ab","amount_msat":1500}}`))
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}
	received, ok := ev.(PaymentReceived)
	if !ok {
		t.Fatalf("unexpected variant: %T", ev)
	}
	if received.PaymentID == nil || *received.PaymentID != "ab" || received.AmountMsat != 1500 {
		t.Fatalf("unexpected payload: %+v", received)
	}

	ev, err = DecodeEvent([]byte(`{"type":"ChannelPending","data":{"funding_txo":{"txid":"ff","vout":1}}}`))
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}
	if pending, ok := ev.(ChannelPending); !ok || pending.FundingTxo.Vout != 1 {
		t.Fatalf("unexpected channel pending: %#v", ev)
	}
}

func TestDecodeEventUnknownTagBecomesOther(t *testing.T) {
	ev, err := DecodeEvent([]byte(`{"type":"SpliceLocked","data":{"x":1}}`))
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}
	other, ok := ev.(OtherEvent)
	if !ok || other.Name != "SpliceLocked" {
		t.Fatalf("expected other event, got %#v", ev)
	}
}

func TestUnknownEventReencodesVerbatim(t *testing.T) {
	in := `{"type":"SomethingNew","data":{"x":1,"payment_id":"p9"}}`
	var env EventEnvelope
	if err := json.Unmarshal([]byte(" "+in+"\n"), &env); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	out, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(out) != in {
		t.Fatalf("unknown event not preserved: %s", out)
	}
}

func TestConstructedOtherEventUsesOtherTag(t *testing.T) {
	out, err := json.Marshal(EventEnvelope{Event: OtherEvent{Name: "SpliceLocked"}})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(out) != `{"type":"Other","data":{"kind":"SpliceLocked"}}` {
		t.Fatalf("unexpected wire form: %s", out)
	}
}

func TestDecodeEventMissingTag(t *testing.T) {
	if _, err := DecodeEvent([]byte(`{"data":{}}`)); err == nil {
		t.Fatal("expected missing tag error")
	}
}

func TestEventEnvelopeKeepsWireShape(t *testing.T) {
	in := `{"type":"Other","data":{"kind":"ChannelPaused"}}`
	var env EventEnvelope
	if err := json.Unmarshal([]byte(in), &env); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	out, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(out) != in {
		t.Fatalf("unexpected wire form: %s", out)
	}
}
