package out

import (
	"fmt"

	"github.com/ggonzalez94/rgbldk-cli/internal/model"
)

// EventLine renders one event as `Kind key=value ...`. Absent optional
// values print as "-".
func EventLine(ev model.Event) string {
	switch e := ev.(type) {
	case model.PaymentSuccessful:
		fee := "-"
		if e.FeePaidMsat != nil {
			fee = FormatMsat(*e.FeePaidMsat)
		}
		return fmt.Sprintf("PaymentSuccessful payment_id=%s fee_paid=%s", OptString(e.PaymentID), fee)
	case model.PaymentFailedEvent:
		return fmt.Sprintf("PaymentFailed payment_id=%s", OptString(e.PaymentID))
	case model.PaymentReceived:
		return fmt.Sprintf("PaymentReceived payment_id=%s amount=%s", OptString(e.PaymentID), FormatMsat(e.AmountMsat))
	case model.ChannelPending:
		return fmt.Sprintf("ChannelPending funding_txo=%s:%d", e.FundingTxo.TxID, e.FundingTxo.Vout)
	case model.ChannelReady:
		return fmt.Sprintf("ChannelReady user_channel_id=%s", e.UserChannelID)
	case model.ChannelClosed:
		return fmt.Sprintf("ChannelClosed user_channel_id=%s channel_id=%s counterparty_node_id=%s reason=%s",
			e.UserChannelID, e.ChannelID, OptString(e.CounterpartyNodeID), OptString(e.Reason))
	case model.OtherEvent:
		return fmt.Sprintf("Other kind=%s", e.Name)
	default:
		return fmt.Sprintf("Other kind=%s", ev.Kind())
	}
}
