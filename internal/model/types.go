package model

import "encoding/json"

type Status struct {
	IsRunning       bool   `json:"is_running"`
	IsListening     bool   `json:"is_listening"`
	BestBlockHeight uint32 `json:"best_block_height"`
}

type NodeID struct {
	NodeID string `json:"node_id"`
}

type ListeningAddresses struct {
	Addresses []string `json:"addresses"`
}

type NewAddress struct {
	Address string `json:"address"`
}

type Balances struct {
	TotalOnchainBalanceSats        uint64 `json:"total_onchain_balance_sats"`
	SpendableOnchainBalanceSats    uint64 `json:"spendable_onchain_balance_sats"`
	TotalAnchorChannelsReserveSats uint64 `json:"total_anchor_channels_reserve_sats"`
	TotalLightningBalanceSats      uint64 `json:"total_lightning_balance_sats"`
}

// HealthCheck is one named sub-check. Order within a response is significant.
type HealthCheck struct {
	Name   string  `json:"name"`
	OK     bool    `json:"ok"`
	Detail *string `json:"detail,omitempty"`
	Hint   *string `json:"hint,omitempty"`
}

// OkResult is the composite result shared by health, readiness and abandon.
// OK is authoritative as reported by the daemon; it is never derived from
// Checks.
type OkResult struct {
	OK     bool          `json:"ok"`
	Checks []HealthCheck `json:"checks,omitempty"`
}

type Peer struct {
	NodeID      string `json:"node_id"`
	Address     string `json:"address"`
	IsPersisted bool   `json:"is_persisted"`
	IsConnected bool   `json:"is_connected"`
}

type PeerConnectRequest struct {
	NodeID  string `json:"node_id"`
	Address string `json:"address"`
	Persist bool   `json:"persist"`
}

type PeerDisconnectRequest struct {
	NodeID string `json:"node_id"`
}

type RGBChannelBalance struct {
	AssetID      string `json:"asset_id"`
	LocalAmount  uint64 `json:"local_amount"`
	RemoteAmount uint64 `json:"remote_amount"`
}

type Channel struct {
	ChannelID            string             `json:"channel_id"`
	UserChannelID        string             `json:"user_channel_id"`
	CounterpartyNodeID   string             `json:"counterparty_node_id"`
	ChannelPoint         *string            `json:"channel_point"`
	ChannelValueSats     uint64             `json:"channel_value_sats"`
	OutboundCapacityMsat uint64             `json:"outbound_capacity_msat"`
	InboundCapacityMsat  uint64             `json:"inbound_capacity_msat"`
	IsChannelReady       bool               `json:"is_channel_ready"`
	IsUsable             bool               `json:"is_usable"`
	IsAnnounced          bool               `json:"is_announced"`
	RGBBalance           *RGBChannelBalance `json:"rgb_balance,omitempty"`
}

type OpenChannelRequest struct {
	NodeID                 string  `json:"node_id"`
	Address                string  `json:"address"`
	ChannelAmountSats      uint64  `json:"channel_amount_sats"`
	PushToCounterpartyMsat *uint64 `json:"push_to_counterparty_msat"`
	Announce               *bool   `json:"announce"`
}

type OpenChannelResponse struct {
	UserChannelID string `json:"user_channel_id"`
}

type CloseChannelRequest struct {
	UserChannelID      string `json:"user_channel_id"`
	CounterpartyNodeID string `json:"counterparty_node_id"`
}

const (
	PaymentPending   = "Pending"
	PaymentSucceeded = "Succeeded"
	PaymentFailed    = "Failed"
)

// Payment is a snapshot of a payment as last reported by the daemon.
type Payment struct {
	ID          string          `json:"id"`
	Direction   string          `json:"direction"`
	Status      string          `json:"status"`
	AmountMsat  *uint64         `json:"amount_msat"`
	Kind        string          `json:"kind"`
	FeePaidMsat *uint64         `json:"fee_paid_msat"`
	KindDetails json.RawMessage `json:"kind_details,omitempty"`
}

type PaymentWaitRequest struct {
	TimeoutSecs *uint32 `json:"timeout_secs"`
}

type PaymentWaitResult struct {
	OK      bool          `json:"ok"`
	Payment Payment       `json:"payment"`
	Checks  []HealthCheck `json:"checks,omitempty"`
}

type Bolt11ReceiveRequest struct {
	AmountMsat  uint64 `json:"amount_msat"`
	Description string `json:"description"`
	ExpirySecs  uint32 `json:"expiry_secs"`
}

type Bolt11ReceiveVarRequest struct {
	Description string `json:"description"`
	ExpirySecs  uint32 `json:"expiry_secs"`
}

type Bolt11ReceiveResponse struct {
	Invoice string `json:"invoice"`
}

type Bolt11PayRequest struct {
	Invoice    string  `json:"invoice"`
	AmountMsat *uint64 `json:"amount_msat"`
}

type Bolt11PayResponse struct {
	PaymentID   string  `json:"payment_id"`
	Preimage    string  `json:"preimage"`
	AmountSats  uint64  `json:"amount_sats"`
	Destination string  `json:"destination"`
	FeePaidMsat *uint64 `json:"fee_paid_msat"`
}

type Bolt12OfferReceiveRequest struct {
	AmountMsat  uint64  `json:"amount_msat"`
	Description string  `json:"description"`
	ExpirySecs  *uint32 `json:"expiry_secs"`
	Quantity    *uint64 `json:"quantity"`
}

type Bolt12OfferReceiveVarRequest struct {
	Description string  `json:"description"`
	ExpirySecs  *uint32 `json:"expiry_secs"`
}

type Bolt12OfferResponse struct {
	Offer string `json:"offer"`
}

type Bolt12OfferDecodeRequest struct {
	Offer string `json:"offer"`
}

type Bolt12OfferDecodeResponse struct {
	OfferID                string   `json:"offer_id"`
	SigningPubkey          *string  `json:"signing_pubkey"`
	Description            *string  `json:"description"`
	Issuer                 *string  `json:"issuer"`
	AmountMsat             *uint64  `json:"amount_msat"`
	AbsoluteExpiryUnixSecs *uint64  `json:"absolute_expiry_unix_secs"`
	ChainHashes            []string `json:"chain_hashes"`
	PathsCount             uint64   `json:"paths_count"`
	ExpectsQuantity        bool     `json:"expects_quantity"`
}

type Bolt12OfferSendRequest struct {
	Offer      string  `json:"offer"`
	AmountMsat *uint64 `json:"amount_msat"`
	Quantity   *uint64 `json:"quantity"`
	PayerNote  *string `json:"payer_note"`
}

type Bolt12RefundInitiateRequest struct {
	AmountMsat uint64  `json:"amount_msat"`
	ExpirySecs uint32  `json:"expiry_secs"`
	Quantity   *uint64 `json:"quantity"`
	PayerNote  *string `json:"payer_note"`
}

type Bolt12RefundInitiateResponse struct {
	Refund    string `json:"refund"`
	PaymentID string `json:"payment_id"`
}

type Bolt12RefundDecodeRequest struct {
	Refund string `json:"refund"`
}

type Bolt12RefundDecodeResponse struct {
	Description            string  `json:"description"`
	Issuer                 *string `json:"issuer"`
	AmountMsat             uint64  `json:"amount_msat"`
	AbsoluteExpiryUnixSecs *uint64 `json:"absolute_expiry_unix_secs"`
	ChainHash              string  `json:"chain_hash"`
	PayerSigningPubkey     string  `json:"payer_signing_pubkey"`
	PayerNote              *string `json:"payer_note"`
	Quantity               *uint64 `json:"quantity"`
	PathsCount             uint64  `json:"paths_count"`
}

type Bolt12RefundRequestPaymentRequest struct {
	Refund string `json:"refund"`
}

type Bolt12RefundRequestPaymentResponse struct {
	Invoice    string `json:"invoice"`
	InvoiceHex string `json:"invoice_hex"`
	PaymentID  string `json:"payment_id"`
}

type CustomTLV struct {
	Type     uint64 `json:"type"`
	ValueHex string `json:"value_hex"`
}

type SpontaneousSendRequest struct {
	CounterpartyNodeID string      `json:"counterparty_node_id"`
	AmountMsat         uint64      `json:"amount_msat"`
	CustomTLVs         []CustomTLV `json:"custom_tlvs"`
}

type SendResponse struct {
	PaymentID string `json:"payment_id"`
}
