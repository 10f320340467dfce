package daemon

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/ggonzalez94/rgbldk-cli/internal/daemontest"
	clierr "github.com/ggonzalez94/rgbldk-cli/internal/errors"
	"github.com/ggonzalez94/rgbldk-cli/internal/httpx"
	"github.com/ggonzalez94/rgbldk-cli/internal/model"
)

func newClient(t *testing.T) (*Client, *daemontest.Server) {
	t.Helper()
	srv := daemontest.New(t)
	return New(httpx.New(2*time.Second, nil), srv.URL+"/"), srv
}

func TestReadyAcceptsServiceUnavailable(t *testing.T) {
	c, srv := newClient(t)
	srv.Handle(http.MethodGet, "/api/v1/readyz", http.StatusServiceUnavailable,
		`{"ok":false,"checks":[{"name":"node_is_running","ok":false}]}`)

	res, err := c.Ready(context.Background())
	if err != nil {
		t.Fatalf("Ready failed: %v", err)
	}
	if res.OK || len(res.Checks) != 1 || res.Checks[0].Name != "node_is_running" {
		t.Fatalf("unexpected readiness: %+v", res)
	}
}

func TestHealthRejectsServiceUnavailable(t *testing.T) {
	c, srv := newClient(t)
	srv.Handle(http.MethodGet, "/api/v1/healthz", http.StatusServiceUnavailable, `{"error":"down"}`)

	_, err := c.Health(context.Background())
	if !clierr.Is(err, clierr.CodeServer) {
		t.Fatalf("expected server error, got %v", err)
	}
}

func TestKeepsServerReportedOkOverChecks(t *testing.T) {
	c, srv := newClient(t)
	srv.Handle(http.MethodGet, "/api/v1/healthz", http.StatusOK,
		`{"ok":true,"checks":[{"name":"p2p_is_listening","ok":false,"hint":"set listen addr"}]}`)

	res, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if !res.OK {
		t.Fatal("aggregate ok must come from the daemon")
	}
	if res.Checks[0].Hint == nil || *res.Checks[0].Hint != "set listen addr" {
		t.Fatalf("unexpected hint: %+v", res.Checks[0])
	}
}

func TestWaitPaymentSendsTimeout(t *testing.T) {
	c, srv := newClient(t)
	srv.Handle(http.MethodPost, "/api/v1/payment/abc/wait", http.StatusOK,
		`{"ok":true,"payment":{"id":"abc","direction":"Outbound","status":"Succeeded","amount_msat":1000,"kind":"Bolt11","fee_paid_msat":null},"checks":[]}`)

	timeout := uint32(5)
	status, raw, err := c.WaitPayment(context.Background(), "abc", model.PaymentWaitRequest{TimeoutSecs: &timeout})
	if err != nil {
		t.Fatalf("WaitPayment failed: %v", err)
	}
	if status != http.StatusOK || !strings.Contains(string(raw), `"Succeeded"`) {
		t.Fatalf("unexpected wait result: %d %s", status, raw)
	}
	reqs := srv.Requests()
	if len(reqs) != 1 || reqs[0].Body != `{"timeout_secs":5}` {
		t.Fatalf("unexpected requests: %+v", reqs)
	}
}

func TestWaitNextEventDecodesUnion(t *testing.T) {
	c, srv := newClient(t)
	srv.Handle(http.MethodPost, "/api/v1/events/wait_next", http.StatusOK,
		`{"type":"ChannelReady","data":{"user_channel_id":"0011"}}`)

	ev, err := c.WaitNextEvent(context.Background())
	if err != nil {
		t.Fatalf("WaitNextEvent failed: %v", err)
	}
	if ready, ok := ev.(model.ChannelReady); !ok || ready.UserChannelID != "0011" {
		t.Fatalf("unexpected event: %#v", ev)
	}
}

func TestSpontaneousSendEncodesTLVs(t *testing.T) {
	c, srv := newClient(t)
	srv.Handle(http.MethodPost, "/api/v1/spontaneous/send", http.StatusOK, `{"payment_id":"p1"}`)

	_, err := c.SpontaneousSend(context.Background(), model.SpontaneousSendRequest{
		CounterpartyNodeID: "02aa",
		AmountMsat:         1000,
		CustomTLVs:         []model.CustomTLV{{Type: 65537, ValueHex: "beef"}},
	})
	if err != nil {
		t.Fatalf("SpontaneousSend failed: %v", err)
	}
	body := srv.Requests()[0].Body
	if !strings.Contains(body, `"custom_tlvs":[{"type":65537,"value_hex":"beef"}]`) {
		t.Fatalf("unexpected body: %s", body)
	}
}
