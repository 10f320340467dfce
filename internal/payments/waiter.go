// Package payments implements the long-poll wait for a payment to reach a
// terminal state.
package payments

import (
	"context"
	"encoding/json"
	"net/http"

	clierr "github.com/ggonzalez94/rgbldk-cli/internal/errors"
	"github.com/ggonzalez94/rgbldk-cli/internal/httpx"
	"github.com/ggonzalez94/rgbldk-cli/internal/model"
)

// Poller issues the single wait request and hands back its raw status and
// body.
type Poller interface {
	WaitPayment(ctx context.Context, paymentID string, req model.PaymentWaitRequest) (int, json.RawMessage, error)
}

// Outcome is either Completed (HTTP 200) or Rejected (any other status).
type Outcome interface {
	HTTPStatus() int
	isOutcome()
}

// Completed carries the daemon's verdict. Result.OK is false when the payment
// did not succeed before the deadline; that is data, not an error.
type Completed struct {
	Status int
	Result model.PaymentWaitResult
}

// Rejected is a non-200 answer. Checks and Payment are filled only when the
// body carried well-formed versions of them.
type Rejected struct {
	Status  int
	Message string
	Checks  []model.HealthCheck
	Payment *model.Payment
	Raw     json.RawMessage
}

func (c Completed) HTTPStatus() int { return c.Status }
func (r Rejected) HTTPStatus() int  { return r.Status }

func (Completed) isOutcome() {}
func (Rejected) isOutcome()  {}

type Waiter struct {
	poller Poller
}

func NewWaiter(poller Poller) *Waiter {
	return &Waiter{poller: poller}
}

// Wait performs exactly one long-poll. A nil timeout leaves the bound to the
// daemon's default.
func (w *Waiter) Wait(ctx context.Context, paymentID string, timeoutSecs *uint32) (Outcome, error) {
	status, raw, err := w.poller.WaitPayment(ctx, paymentID, model.PaymentWaitRequest{TimeoutSecs: timeoutSecs})
	if err != nil {
		return nil, err
	}
	if status == http.StatusOK {
		var res model.PaymentWaitResult
		if err := json.Unmarshal(raw, &res); err != nil {
			return nil, clierr.Wrap(clierr.CodeDecode, "decode payment wait response", err)
		}
		return Completed{Status: status, Result: res}, nil
	}
	return decodeRejected(status, raw), nil
}

func decodeRejected(status int, raw json.RawMessage) Rejected {
	out := Rejected{Status: status, Raw: raw, Message: "request failed"}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		out.Message = httpx.ErrorMessage(raw)
		return out
	}
	if msg, ok := fields["error"]; ok {
		var s string
		if json.Unmarshal(msg, &s) == nil {
			out.Message = s
		}
	}
	if checks, ok := fields["checks"]; ok {
		var cs []model.HealthCheck
		if json.Unmarshal(checks, &cs) == nil {
			out.Checks = cs
		}
	}
	if payment, ok := fields["payment"]; ok {
		var p model.Payment
		if json.Unmarshal(payment, &p) == nil && p.ID != "" {
			out.Payment = &p
		}
	}
	return out
}
