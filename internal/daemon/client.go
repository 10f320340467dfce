package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/ggonzalez94/rgbldk-cli/internal/httpx"
	"github.com/ggonzalez94/rgbldk-cli/internal/model"
)

const apiPrefix = "/api/v1"

// Client maps daemon endpoints to typed calls. Every method performs exactly
// one HTTP exchange.
type Client struct {
	http     *httpx.Client
	longPoll *httpx.Client
	baseURL  string
}

func New(httpClient *httpx.Client, baseURL string) *Client {
	return &Client{
		http:     httpClient,
		longPoll: httpClient.WithTimeout(0),
		baseURL:  baseURL,
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) url(path string) string {
	return httpx.JoinURL(c.baseURL, apiPrefix+path)
}

func call[T any](ctx context.Context, hc *httpx.Client, method, url string, body any, allowed ...int) (T, error) {
	var zero T
	req, err := httpx.NewJSONRequest(ctx, method, url, body)
	if err != nil {
		return zero, err
	}
	env, err := httpx.Send[T](ctx, hc, req, allowed...)
	if err != nil {
		return zero, err
	}
	return env.Value, nil
}

var emptyBody = struct{}{}

func (c *Client) Version(ctx context.Context) (map[string]any, error) {
	return call[map[string]any](ctx, c.http, http.MethodGet, c.url("/version"), nil)
}

func (c *Client) Health(ctx context.Context) (model.OkResult, error) {
	return call[model.OkResult](ctx, c.http, http.MethodGet, c.url("/healthz"), nil)
}

// Ready accepts 503 as a structured not-ready answer.
func (c *Client) Ready(ctx context.Context) (model.OkResult, error) {
	return call[model.OkResult](ctx, c.http, http.MethodGet, c.url("/readyz"), nil, http.StatusServiceUnavailable)
}

func (c *Client) Status(ctx context.Context) (model.Status, error) {
	return call[model.Status](ctx, c.http, http.MethodGet, c.url("/status"), nil)
}

func (c *Client) NodeID(ctx context.Context) (model.NodeID, error) {
	return call[model.NodeID](ctx, c.http, http.MethodGet, c.url("/node_id"), nil)
}

func (c *Client) ListeningAddresses(ctx context.Context) (model.ListeningAddresses, error) {
	return call[model.ListeningAddresses](ctx, c.http, http.MethodGet, c.url("/listening_addresses"), nil)
}

func (c *Client) Balances(ctx context.Context) (model.Balances, error) {
	return call[model.Balances](ctx, c.http, http.MethodGet, c.url("/balances"), nil)
}

func (c *Client) NewAddress(ctx context.Context) (model.NewAddress, error) {
	return call[model.NewAddress](ctx, c.http, http.MethodPost, c.url("/wallet/new_address"), emptyBody)
}

func (c *Client) SyncWallet(ctx context.Context) (json.RawMessage, error) {
	return call[json.RawMessage](ctx, c.http, http.MethodPost, c.url("/wallet/sync"), emptyBody)
}

func (c *Client) Peers(ctx context.Context) ([]model.Peer, error) {
	return call[[]model.Peer](ctx, c.http, http.MethodGet, c.url("/peers"), nil)
}

func (c *Client) ConnectPeer(ctx context.Context, req model.PeerConnectRequest) (json.RawMessage, error) {
	return call[json.RawMessage](ctx, c.http, http.MethodPost, c.url("/peers/connect"), req)
}

func (c *Client) DisconnectPeer(ctx context.Context, req model.PeerDisconnectRequest) (json.RawMessage, error) {
	return call[json.RawMessage](ctx, c.http, http.MethodPost, c.url("/peers/disconnect"), req)
}

func (c *Client) Channels(ctx context.Context) ([]model.Channel, error) {
	return call[[]model.Channel](ctx, c.http, http.MethodGet, c.url("/channels"), nil)
}

func (c *Client) OpenChannel(ctx context.Context, req model.OpenChannelRequest) (model.OpenChannelResponse, error) {
	return call[model.OpenChannelResponse](ctx, c.http, http.MethodPost, c.url("/channel/open"), req)
}

func (c *Client) CloseChannel(ctx context.Context, req model.CloseChannelRequest) (json.RawMessage, error) {
	return call[json.RawMessage](ctx, c.http, http.MethodPost, c.url("/channel/close"), req)
}

func (c *Client) ForceCloseChannel(ctx context.Context, req model.CloseChannelRequest) (json.RawMessage, error) {
	return call[json.RawMessage](ctx, c.http, http.MethodPost, c.url("/channel/force_close"), req)
}

func (c *Client) Payments(ctx context.Context) ([]model.Payment, error) {
	return call[[]model.Payment](ctx, c.http, http.MethodGet, c.url("/payments"), nil)
}

func (c *Client) Payment(ctx context.Context, paymentID string) (model.Payment, error) {
	return call[model.Payment](ctx, c.http, http.MethodGet, c.url("/payment/"+url.PathEscape(paymentID)), nil)
}

// WaitPayment long-polls without a client-side timeout and returns the raw
// status and body; the 200 and non-200 bodies have different shapes.
func (c *Client) WaitPayment(ctx context.Context, paymentID string, req model.PaymentWaitRequest) (int, json.RawMessage, error) {
	hReq, err := httpx.NewJSONRequest(ctx, http.MethodPost, c.url("/payment/"+url.PathEscape(paymentID)+"/wait"), req)
	if err != nil {
		return 0, nil, err
	}
	return c.longPoll.SendValue(ctx, hReq)
}

func (c *Client) AbandonPayment(ctx context.Context, paymentID string) (model.OkResult, error) {
	return call[model.OkResult](ctx, c.http, http.MethodPost, c.url("/payment/"+url.PathEscape(paymentID)+"/abandon"), emptyBody)
}

func (c *Client) Bolt11Receive(ctx context.Context, req model.Bolt11ReceiveRequest) (model.Bolt11ReceiveResponse, error) {
	return call[model.Bolt11ReceiveResponse](ctx, c.http, http.MethodPost, c.url("/bolt11/receive"), req)
}

func (c *Client) Bolt11ReceiveVar(ctx context.Context, req model.Bolt11ReceiveVarRequest) (model.Bolt11ReceiveResponse, error) {
	return call[model.Bolt11ReceiveResponse](ctx, c.http, http.MethodPost, c.url("/bolt11/receive_var"), req)
}

func (c *Client) Bolt11Pay(ctx context.Context, req model.Bolt11PayRequest) (model.Bolt11PayResponse, error) {
	return call[model.Bolt11PayResponse](ctx, c.longPoll, http.MethodPost, c.url("/bolt11/pay"), req)
}

func (c *Client) Bolt12OfferReceive(ctx context.Context, req model.Bolt12OfferReceiveRequest) (model.Bolt12OfferResponse, error) {
	return call[model.Bolt12OfferResponse](ctx, c.http, http.MethodPost, c.url("/bolt12/offer/receive"), req)
}

func (c *Client) Bolt12OfferReceiveVar(ctx context.Context, req model.Bolt12OfferReceiveVarRequest) (model.Bolt12OfferResponse, error) {
	return call[model.Bolt12OfferResponse](ctx, c.http, http.MethodPost, c.url("/bolt12/offer/receive_var"), req)
}

func (c *Client) Bolt12OfferDecode(ctx context.Context, req model.Bolt12OfferDecodeRequest) (model.Bolt12OfferDecodeResponse, error) {
	return call[model.Bolt12OfferDecodeResponse](ctx, c.http, http.MethodPost, c.url("/bolt12/offer/decode"), req)
}

func (c *Client) Bolt12OfferSend(ctx context.Context, req model.Bolt12OfferSendRequest) (model.SendResponse, error) {
	return call[model.SendResponse](ctx, c.http, http.MethodPost, c.url("/bolt12/offer/send"), req)
}

func (c *Client) Bolt12RefundInitiate(ctx context.Context, req model.Bolt12RefundInitiateRequest) (model.Bolt12RefundInitiateResponse, error) {
	return call[model.Bolt12RefundInitiateResponse](ctx, c.http, http.MethodPost, c.url("/bolt12/refund/initiate"), req)
}

func (c *Client) Bolt12RefundDecode(ctx context.Context, req model.Bolt12RefundDecodeRequest) (model.Bolt12RefundDecodeResponse, error) {
	return call[model.Bolt12RefundDecodeResponse](ctx, c.http, http.MethodPost, c.url("/bolt12/refund/decode"), req)
}

func (c *Client) Bolt12RefundRequestPayment(ctx context.Context, req model.Bolt12RefundRequestPaymentRequest) (model.Bolt12RefundRequestPaymentResponse, error) {
	return call[model.Bolt12RefundRequestPaymentResponse](ctx, c.http, http.MethodPost, c.url("/bolt12/refund/request_payment"), req)
}

func (c *Client) SpontaneousSend(ctx context.Context, req model.SpontaneousSendRequest) (model.SendResponse, error) {
	return call[model.SendResponse](ctx, c.http, http.MethodPost, c.url("/spontaneous/send"), req)
}

// WaitNextEvent blocks server-side until an event is pending.
func (c *Client) WaitNextEvent(ctx context.Context) (model.Event, error) {
	env, err := call[model.EventEnvelope](ctx, c.longPoll, http.MethodPost, c.url("/events/wait_next"), emptyBody)
	if err != nil {
		return nil, err
	}
	return env.Event, nil
}

func (c *Client) EventHandled(ctx context.Context) (json.RawMessage, error) {
	return call[json.RawMessage](ctx, c.http, http.MethodPost, c.url("/events/handled"), emptyBody)
}
