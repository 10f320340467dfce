package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	clierr "github.com/ggonzalez94/rgbldk-cli/internal/errors"
)

type okBody struct {
	OK     bool `json:"ok"`
	Checks []struct {
		Name string `json:"name"`
		OK   bool   `json:"ok"`
	} `json:"checks"`
}

func newServer(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var count int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&count, 1)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &count
}

func get(t *testing.T, url string) *http.Request {
	t.Helper()
	req, err := NewJSONRequest(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	return req
}

func TestSendDecodesSuccess(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `{"ok":true,"checks":[{"name":"http_server","ok":true}]}`)
	env, err := Send[okBody](context.Background(), New(2*time.Second, nil), get(t, srv.URL))
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if env.Status != http.StatusOK || !env.Value.OK || len(env.Value.Checks) != 1 {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestSendServerErrorUsesErrorField(t *testing.T) {
	srv, _ := newServer(t, http.StatusBadRequest, `{"error":"invalid node id"}`)
	_, err := Send[okBody](context.Background(), New(2*time.Second, nil), get(t, srv.URL))
	cliErr, ok := clierr.As(err)
	if !ok || cliErr.Code != clierr.CodeServer {
		t.Fatalf("expected server error, got %v", err)
	}
	if cliErr.Message != "invalid node id" || cliErr.HTTPStatus != http.StatusBadRequest {
		t.Fatalf("unexpected server error: %+v", cliErr)
	}
}

func TestSendServerErrorFallsBackToRawBody(t *testing.T) {
	srv, _ := newServer(t, http.StatusBadGateway, `upstream exploded`)
	_, err := Send[okBody](context.Background(), New(2*time.Second, nil), get(t, srv.URL))
	cliErr, ok := clierr.As(err)
	if !ok || cliErr.Message != "upstream exploded" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSendDecodeFailureIsDistinct(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `{"ok":"maybe"}`)
	_, err := Send[okBody](context.Background(), New(2*time.Second, nil), get(t, srv.URL))
	if !clierr.Is(err, clierr.CodeDecode) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestSendAllowedStatusDecodesBody(t *testing.T) {
	srv, _ := newServer(t, http.StatusServiceUnavailable, `{"ok":false,"checks":[{"name":"node_is_running","ok":false}]}`)
	env, err := Send[okBody](context.Background(), New(2*time.Second, nil), get(t, srv.URL), http.StatusServiceUnavailable)
	if err != nil {
		t.Fatalf("expected allowed status to decode, got %v", err)
	}
	if env.Status != http.StatusServiceUnavailable || env.Value.OK || env.Value.Checks[0].Name != "node_is_running" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestSendDoesNotRetry(t *testing.T) {
	srv, count := newServer(t, http.StatusInternalServerError, `{"error":"x"}`)
	_, err := Send[okBody](context.Background(), New(2*time.Second, nil), get(t, srv.URL))
	if err == nil {
		t.Fatal("expected error")
	}
	if n := atomic.LoadInt32(count); n != 1 {
		t.Fatalf("expected exactly one exchange, got %d", n)
	}
}

func TestTransportFailureIgnoresAllowedStatus(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `{}`)
	url := srv.URL
	srv.Close()
	_, err := Send[okBody](context.Background(), New(time.Second, nil), get(t, url), http.StatusServiceUnavailable)
	if !clierr.Is(err, clierr.CodeTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestSendValuePreservesStatusAndBody(t *testing.T) {
	srv, _ := newServer(t, http.StatusRequestTimeout, `{"error":"timed out","checks":[]}`)
	status, raw, err := New(time.Second, nil).SendValue(context.Background(), get(t, srv.URL))
	if err != nil {
		t.Fatalf("SendValue failed: %v", err)
	}
	if status != http.StatusRequestTimeout {
		t.Fatalf("unexpected status: %d", status)
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil || body["error"] != "timed out" {
		t.Fatalf("unexpected body: %s", raw)
	}
}

func TestSendValueWrapsNonJSONErrorBody(t *testing.T) {
	srv, _ := newServer(t, http.StatusNotFound, `no such payment`)
	_, raw, err := New(time.Second, nil).SendValue(context.Background(), get(t, srv.URL))
	if err != nil {
		t.Fatalf("SendValue failed: %v", err)
	}
	if string(raw) != `{"error":"no such payment"}` {
		t.Fatalf("unexpected wrapped body: %s", raw)
	}
}

func TestErrorMessageLossyUTF8(t *testing.T) {
	got := ErrorMessage([]byte{'b', 'a', 'd', 0xff})
	if got != "bad�" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestJoinURL(t *testing.T) {
	if got := JoinURL("http://127.0.0.1:8500/", "/api/v1/status"); got != "http://127.0.0.1:8500/api/v1/status" {
		t.Fatalf("unexpected url: %s", got)
	}
}
