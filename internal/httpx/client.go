package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	clierr "github.com/ggonzalez94/rgbldk-cli/internal/errors"
)

type Client struct {
	httpClient *http.Client
	userAgent  string
	logger     *slog.Logger
}

// Envelope is a decoded response together with the HTTP status it arrived with.
type Envelope[T any] struct {
	Status int
	Value  T
}

func New(timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  "rgbldk/1.0",
		logger:     logger,
	}
}

// WithTimeout returns a client sharing transport and logger but using timeout.
// A zero timeout disables the client-side bound, which long-poll calls rely on.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout, Transport: c.httpClient.Transport},
		userAgent:  c.userAgent,
		logger:     c.logger,
	}
}

// Send performs one exchange and decodes the body as T on 2xx or on any status
// listed in allowed.
func Send[T any](ctx context.Context, c *Client, req *http.Request, allowed ...int) (Envelope[T], error) {
	var out T
	status, err := c.DoJSON(ctx, req, &out, allowed...)
	if err != nil {
		return Envelope[T]{Status: status}, err
	}
	return Envelope[T]{Status: status, Value: out}, nil
}

func (c *Client) DoJSON(ctx context.Context, req *http.Request, out any, allowed ...int) (int, error) {
	status, buf, err := c.exchange(ctx, req)
	if err != nil {
		return status, err
	}
	if !isSuccess(status) && !containsStatus(allowed, status) {
		return status, clierr.Server(status, ErrorMessage(buf))
	}
	if out == nil {
		return status, nil
	}
	if err := json.Unmarshal(buf, out); err != nil {
		return status, clierr.Wrap(clierr.CodeDecode, "decode daemon response", err)
	}
	return status, nil
}

// SendValue performs one exchange and returns the raw JSON body regardless of
// status, leaving the choice of decode target to the caller.
func (c *Client) SendValue(ctx context.Context, req *http.Request) (int, json.RawMessage, error) {
	status, buf, err := c.exchange(ctx, req)
	if err != nil {
		return status, nil, err
	}
	trimmed := bytes.TrimSpace(buf)
	if json.Valid(trimmed) && len(trimmed) > 0 {
		return status, json.RawMessage(trimmed), nil
	}
	if isSuccess(status) {
		return status, nil, clierr.New(clierr.CodeDecode, "decode daemon response: body is not valid JSON")
	}
	wrapped, err := json.Marshal(map[string]string{"error": ErrorMessage(buf)})
	if err != nil {
		return status, nil, clierr.Wrap(clierr.CodeInternal, "encode error body", err)
	}
	return status, wrapped, nil
}

func (c *Client) exchange(ctx context.Context, req *http.Request) (int, []byte, error) {
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req.WithContext(ctx))
	if err != nil {
		c.logger.Debug("daemon request failed", "method", req.Method, "path", req.URL.Path, "err", err)
		return 0, nil, mapNetError(err)
	}
	buf, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	c.logger.Debug("daemon request", "method", req.Method, "path", req.URL.Path, "status", resp.StatusCode, "latency_ms", time.Since(start).Milliseconds())
	if readErr != nil {
		return resp.StatusCode, nil, clierr.Wrap(clierr.CodeTransport, "read daemon response", readErr)
	}
	return resp.StatusCode, buf, nil
}

// NewJSONRequest builds a request against url, encoding body as JSON when it
// is non-nil.
func NewJSONRequest(ctx context.Context, method, url string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, clierr.Wrap(clierr.CodeInternal, "encode request body", err)
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeUsage, "build request", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func JoinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// ErrorMessage extracts the "error" string field of a JSON body, falling back
// to the body text itself.
func ErrorMessage(body []byte) string {
	var payload struct {
		Error *string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != nil {
		return *payload.Error
	}
	return strings.ToValidUTF8(string(body), "�")
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func containsStatus(allowed []int, status int) bool {
	for _, s := range allowed {
		if s == status {
			return true
		}
	}
	return false
}

func mapNetError(err error) error {
	if nerr, ok := err.(net.Error); ok {
		if nerr.Timeout() {
			return clierr.Wrap(clierr.CodeTransport, "daemon request timed out", err)
		}
	}
	return clierr.Wrap(clierr.CodeTransport, "daemon request failed", err)
}
