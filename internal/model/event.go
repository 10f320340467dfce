package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Event is one notification from the daemon's event queue. The set of
// implementations is closed: PaymentSuccessful, PaymentFailed, PaymentReceived,
// ChannelPending, ChannelReady, ChannelClosed and OtherEvent.
type Event interface {
	Kind() string
	isEvent()
}

type PaymentSuccessful struct {
	PaymentID   *string `json:"payment_id"`
	FeePaidMsat *uint64 `json:"fee_paid_msat"`
}

type PaymentFailedEvent struct {
	PaymentID *string `json:"payment_id"`
}

type PaymentReceived struct {
	PaymentID  *string `json:"payment_id"`
	AmountMsat uint64  `json:"amount_msat"`
}

type OutPoint struct {
	TxID string `json:"txid"`
	Vout uint32 `json:"vout"`
}

type ChannelPending struct {
	FundingTxo OutPoint `json:"funding_txo"`
}

type ChannelReady struct {
	UserChannelID string `json:"user_channel_id"`
}

type ChannelClosed struct {
	ChannelID          string  `json:"channel_id"`
	UserChannelID      string  `json:"user_channel_id"`
	CounterpartyNodeID *string `json:"counterparty_node_id,omitempty"`
	Reason             *string `json:"reason,omitempty"`
}

// OtherEvent carries event kinds the daemon does not model explicitly, and
// tags this client does not know. A decoded OtherEvent re-encodes to the
// exact envelope it was read from.
type OtherEvent struct {
	Name string `json:"kind"`

	raw json.RawMessage
}

func (PaymentSuccessful) Kind() string  { return "PaymentSuccessful" }
func (PaymentFailedEvent) Kind() string { return "PaymentFailed" }
func (PaymentReceived) Kind() string    { return "PaymentReceived" }
func (ChannelPending) Kind() string     { return "ChannelPending" }
func (ChannelReady) Kind() string       { return "ChannelReady" }
func (ChannelClosed) Kind() string      { return "ChannelClosed" }
func (OtherEvent) Kind() string         { return "Other" }

func (PaymentSuccessful) isEvent()  {}
func (PaymentFailedEvent) isEvent() {}
func (PaymentReceived) isEvent()    {}
func (ChannelPending) isEvent()     {}
func (ChannelReady) isEvent()       {}
func (ChannelClosed) isEvent()      {}
func (OtherEvent) isEvent()         {}

// EventEnvelope is the wire form {"type": <kind>, "data": {...}}.
type EventEnvelope struct {
	Event Event
}

type rawEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func (e EventEnvelope) MarshalJSON() ([]byte, error) {
	if e.Event == nil {
		return nil, fmt.Errorf("marshal event: empty envelope")
	}
	if other, ok := e.Event.(OtherEvent); ok && len(other.raw) > 0 {
		return other.raw, nil
	}
	data, err := json.Marshal(e.Event)
	if err != nil {
		return nil, err
	}
	return json.Marshal(rawEvent{Type: e.Event.Kind(), Data: data})
}

func (e *EventEnvelope) UnmarshalJSON(buf []byte) error {
	ev, err := DecodeEvent(buf)
	if err != nil {
		return err
	}
	e.Event = ev
	return nil
}

// DecodeEvent decodes the tagged wire form. Tags this client does not know
// decode as OtherEvent named after the tag, keeping the envelope verbatim.
func DecodeEvent(buf []byte) (Event, error) {
	var raw rawEvent
	if err := json.Unmarshal(buf, &raw); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	if raw.Type == "" {
		return nil, fmt.Errorf("decode event: missing type tag")
	}
	data := raw.Data
	if len(data) == 0 || string(data) == "null" {
		data = []byte("{}")
	}

	switch raw.Type {
	case "PaymentSuccessful":
		return decodeVariant[PaymentSuccessful](data)
	case "PaymentFailed":
		return decodeVariant[PaymentFailedEvent](data)
	case "PaymentReceived":
		return decodeVariant[PaymentReceived](data)
	case "ChannelPending":
		return decodeVariant[ChannelPending](data)
	case "ChannelReady":
		return decodeVariant[ChannelReady](data)
	case "ChannelClosed":
		return decodeVariant[ChannelClosed](data)
	case "Other":
		ev, err := decodeVariant[OtherEvent](data)
		if err != nil {
			return nil, err
		}
		return withRaw(ev.(OtherEvent), buf)
	default:
		return withRaw(OtherEvent{Name: raw.Type}, buf)
	}
}

func withRaw(ev OtherEvent, buf []byte) (Event, error) {
	var compact bytes.Buffer
	if err := json.Compact(&compact, buf); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	ev.raw = compact.Bytes()
	return ev, nil
}

func decodeVariant[T Event](data []byte) (Event, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode %s event: %w", v.Kind(), err)
	}
	return v, nil
}
