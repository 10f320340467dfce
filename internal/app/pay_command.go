package app

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	clierr "github.com/ggonzalez94/rgbldk-cli/internal/errors"
	"github.com/ggonzalez94/rgbldk-cli/internal/model"
	"github.com/ggonzalez94/rgbldk-cli/internal/out"
	"github.com/ggonzalez94/rgbldk-cli/internal/payments"
	"github.com/ggonzalez94/rgbldk-cli/internal/tlv"
)

const defaultExpirySecs = 3600

func (s *runtimeState) newPayCommand() *cobra.Command {
	root := &cobra.Command{Use: "pay", Short: "Payments: invoices, offers, refunds and keysend"}

	root.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: "List payments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := s.daemon.Payments(cmd.Context())
			if err != nil {
				return err
			}
			return s.render.Emit(list, func() error {
				rows := make([][]string, 0, len(list))
				for _, p := range list {
					rows = append(rows, []string{
						s.render.ID(p.ID),
						p.Status,
						p.Kind,
						p.Direction,
						out.OptComma(p.AmountMsat),
						out.OptComma(p.FeePaidMsat),
					})
				}
				s.render.Table([]string{"ID", "Status", "Kind", "Dir", "Amount (msat)", "Fee (msat)"}, rows, 4, 5)
				return nil
			})
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "get PAYMENT_ID",
		Short: "Show one payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := s.daemon.Payment(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return s.render.Emit(p, func() error {
				s.render.Fields([][]string{
					{"id", p.ID},
					{"direction", p.Direction},
					{"status", s.paymentStatus(p.Status)},
					{"kind", p.Kind},
					{"kind_details", kindDetails(p.KindDetails)},
					{"amount (msat)", out.OptMsat(p.AmountMsat)},
					{"fee paid (msat)", out.OptMsat(p.FeePaidMsat)},
				})
				return nil
			})
		},
	})

	root.AddCommand(s.newPayWaitCommand())

	root.AddCommand(&cobra.Command{
		Use:   "abandon PAYMENT_ID",
		Short: "Abandon an outbound payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := s.daemon.AbandonPayment(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return s.render.Emit(res, func() error {
				s.render.Checks("Abandon payment", res.OK, res.Checks)
				return nil
			})
		},
	})

	root.AddCommand(s.newInvoiceCommand())
	root.AddCommand(s.newOfferCommand())
	root.AddCommand(s.newRefundCommand())
	root.AddCommand(s.newKeysendCommand())

	return root
}

func (s *runtimeState) newPayWaitCommand() *cobra.Command {
	var timeoutSecs uint32
	cmd := &cobra.Command{
		Use:   "wait PAYMENT_ID",
		Short: "Block until a payment reaches a terminal state (exit 1 unless HTTP 200)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			waiter := payments.NewWaiter(s.daemon)
			timeout := optUint32(cmd, "timeout-secs", timeoutSecs)
			outcome, err := out.WithSpinner(s.render, "Waiting for payment...", func() (payments.Outcome, error) {
				return waiter.Wait(cmd.Context(), args[0], timeout)
			})
			if err != nil {
				return err
			}

			switch o := outcome.(type) {
			case payments.Completed:
				return s.render.Emit(o.Result, func() error {
					s.render.Checks("Payment wait", o.Result.OK, o.Result.Checks)
					s.render.Println(o.Result.Payment.ID)
					return nil
				})
			case payments.Rejected:
				failure := clierr.Server(o.Status, o.Message)
				if s.render.IsJSON() {
					if json.Valid(o.Raw) {
						if err := s.render.JSON(o.Raw); err != nil {
							return err
						}
						return reportedError{err: failure}
					}
					return failure
				}
				s.render.Error(failure)
				if len(o.Checks) > 0 {
					s.render.ChecksTo(s.render.Stderr(), "Details", false, o.Checks)
				}
				if o.Payment != nil {
					s.render.Println(o.Payment.ID)
				}
				return reportedError{err: failure}
			default:
				return clierr.New(clierr.CodeInternal, "unexpected payment wait outcome")
			}
		},
	}
	cmd.Flags().Uint32Var(&timeoutSecs, "timeout-secs", 0, "Server-side wait bound in seconds (daemon default when unset)")
	return cmd
}

func (s *runtimeState) newInvoiceCommand() *cobra.Command {
	root := &cobra.Command{Use: "invoice", Short: "BOLT11 invoices"}

	var (
		desc       string
		amountMsat uint64
		expirySecs uint32
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an invoice (variable amount when --amount-msat is omitted)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				resp model.Bolt11ReceiveResponse
				err  error
			)
			if amount := optUint64(cmd, "amount-msat", amountMsat); amount != nil {
				resp, err = s.daemon.Bolt11Receive(cmd.Context(), model.Bolt11ReceiveRequest{
					AmountMsat:  *amount,
					Description: desc,
					ExpirySecs:  expirySecs,
				})
			} else {
				resp, err = s.daemon.Bolt11ReceiveVar(cmd.Context(), model.Bolt11ReceiveVarRequest{
					Description: desc,
					ExpirySecs:  expirySecs,
				})
			}
			if err != nil {
				return err
			}
			return s.render.Emit(resp, func() error {
				s.render.Println(resp.Invoice)
				return nil
			})
		},
	}
	create.Flags().StringVar(&desc, "desc", "", "Invoice description")
	create.Flags().Uint64Var(&amountMsat, "amount-msat", 0, "Amount in msat")
	create.Flags().Uint32Var(&expirySecs, "expiry-secs", defaultExpirySecs, "Invoice expiry in seconds")
	_ = create.MarkFlagRequired("desc")
	root.AddCommand(create)

	var (
		invoice   string
		payAmount uint64
	)
	pay := &cobra.Command{
		Use:   "pay",
		Short: "Pay a BOLT11 invoice",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := s.daemon.Bolt11Pay(cmd.Context(), model.Bolt11PayRequest{
				Invoice:    invoice,
				AmountMsat: optUint64(cmd, "amount-msat", payAmount),
			})
			if err != nil {
				return err
			}
			return s.render.Emit(resp, func() error {
				s.render.Println(resp.PaymentID)
				return nil
			})
		},
	}
	pay.Flags().StringVar(&invoice, "invoice", "", "BOLT11 invoice")
	pay.Flags().Uint64Var(&payAmount, "amount-msat", 0, "Amount in msat for zero-amount invoices")
	_ = pay.MarkFlagRequired("invoice")
	root.AddCommand(pay)

	return root
}

func (s *runtimeState) newOfferCommand() *cobra.Command {
	root := &cobra.Command{Use: "offer", Short: "BOLT12 offers"}

	var (
		desc       string
		amountMsat uint64
		expirySecs uint32
		noExpiry   bool
		quantity   uint64
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an offer (variable amount when --amount-msat is omitted)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var expiry *uint32
			if !noExpiry {
				e := expirySecs
				expiry = &e
			}
			var (
				resp model.Bolt12OfferResponse
				err  error
			)
			if amount := optUint64(cmd, "amount-msat", amountMsat); amount != nil {
				resp, err = s.daemon.Bolt12OfferReceive(cmd.Context(), model.Bolt12OfferReceiveRequest{
					AmountMsat:  *amount,
					Description: desc,
					ExpirySecs:  expiry,
					Quantity:    optUint64(cmd, "quantity", quantity),
				})
			} else {
				resp, err = s.daemon.Bolt12OfferReceiveVar(cmd.Context(), model.Bolt12OfferReceiveVarRequest{
					Description: desc,
					ExpirySecs:  expiry,
				})
			}
			if err != nil {
				return err
			}
			return s.render.Emit(resp, func() error {
				s.render.Println(resp.Offer)
				return nil
			})
		},
	}
	create.Flags().StringVar(&desc, "desc", "", "Offer description")
	create.Flags().Uint64Var(&amountMsat, "amount-msat", 0, "Amount in msat")
	create.Flags().Uint32Var(&expirySecs, "expiry-secs", defaultExpirySecs, "Offer expiry in seconds")
	create.Flags().BoolVar(&noExpiry, "no-expiry", false, "Create an offer that never expires")
	create.Flags().Uint64Var(&quantity, "quantity", 0, "Maximum quantity (fixed-amount offers only)")
	_ = create.MarkFlagRequired("desc")
	create.MarkFlagsMutuallyExclusive("expiry-secs", "no-expiry")
	root.AddCommand(create)

	root.AddCommand(&cobra.Command{
		Use:   "decode OFFER",
		Short: "Decode an offer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := s.daemon.Bolt12OfferDecode(cmd.Context(), model.Bolt12OfferDecodeRequest{Offer: args[0]})
			if err != nil {
				return err
			}
			return s.render.Emit(d, func() error {
				s.render.Fields([][]string{
					{"offer_id", d.OfferID},
					{"signing_pubkey", out.OptString(d.SigningPubkey)},
					{"description", out.OptString(d.Description)},
					{"issuer", out.OptString(d.Issuer)},
					{"amount_msat", out.OptUint(d.AmountMsat)},
					{"absolute_expiry_unix_secs", out.OptUint(d.AbsoluteExpiryUnixSecs)},
					{"paths_count", strconv.FormatUint(d.PathsCount, 10)},
					{"expects_quantity", strconv.FormatBool(d.ExpectsQuantity)},
					{"chain_hashes", strings.Join(d.ChainHashes, ", ")},
				})
				return nil
			})
		},
	})

	var (
		offer     string
		payAmount uint64
		payQty    uint64
		payerNote string
	)
	pay := &cobra.Command{
		Use:   "pay",
		Short: "Pay an offer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := s.daemon.Bolt12OfferSend(cmd.Context(), model.Bolt12OfferSendRequest{
				Offer:      offer,
				AmountMsat: optUint64(cmd, "amount-msat", payAmount),
				Quantity:   optUint64(cmd, "quantity", payQty),
				PayerNote:  optString(cmd, "payer-note", payerNote),
			})
			if err != nil {
				return err
			}
			return s.render.Emit(resp, func() error {
				s.render.Println(resp.PaymentID)
				return nil
			})
		},
	}
	pay.Flags().StringVar(&offer, "offer", "", "BOLT12 offer")
	pay.Flags().Uint64Var(&payAmount, "amount-msat", 0, "Amount in msat for variable-amount offers")
	pay.Flags().Uint64Var(&payQty, "quantity", 0, "Quantity")
	pay.Flags().StringVar(&payerNote, "payer-note", "", "Note for the recipient")
	_ = pay.MarkFlagRequired("offer")
	root.AddCommand(pay)

	return root
}

func (s *runtimeState) newRefundCommand() *cobra.Command {
	root := &cobra.Command{Use: "refund", Short: "BOLT12 refunds"}

	var (
		amountMsat uint64
		expirySecs uint32
		quantity   uint64
		payerNote  string
	)
	initiate := &cobra.Command{
		Use:   "initiate",
		Short: "Create a refund for a counterparty to pay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := s.daemon.Bolt12RefundInitiate(cmd.Context(), model.Bolt12RefundInitiateRequest{
				AmountMsat: amountMsat,
				ExpirySecs: expirySecs,
				Quantity:   optUint64(cmd, "quantity", quantity),
				PayerNote:  optString(cmd, "payer-note", payerNote),
			})
			if err != nil {
				return err
			}
			return s.render.Emit(resp, func() error {
				s.render.Println(resp.Refund)
				s.render.Notef("payment_id: %s", resp.PaymentID)
				return nil
			})
		},
	}
	initiate.Flags().Uint64Var(&amountMsat, "amount-msat", 0, "Refund amount in msat")
	initiate.Flags().Uint32Var(&expirySecs, "expiry-secs", defaultExpirySecs, "Refund expiry in seconds")
	initiate.Flags().Uint64Var(&quantity, "quantity", 0, "Quantity")
	initiate.Flags().StringVar(&payerNote, "payer-note", "", "Payer note")
	_ = initiate.MarkFlagRequired("amount-msat")
	root.AddCommand(initiate)

	root.AddCommand(&cobra.Command{
		Use:   "decode REFUND",
		Short: "Decode a refund",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := s.daemon.Bolt12RefundDecode(cmd.Context(), model.Bolt12RefundDecodeRequest{Refund: args[0]})
			if err != nil {
				return err
			}
			return s.render.Emit(d, func() error {
				s.render.Fields([][]string{
					{"description", d.Description},
					{"issuer", out.OptString(d.Issuer)},
					{"amount_msat", strconv.FormatUint(d.AmountMsat, 10)},
					{"absolute_expiry_unix_secs", out.OptUint(d.AbsoluteExpiryUnixSecs)},
					{"chain_hash", d.ChainHash},
					{"payer_signing_pubkey", d.PayerSigningPubkey},
					{"payer_note", out.OptString(d.PayerNote)},
					{"quantity", out.OptUint(d.Quantity)},
					{"paths_count", strconv.FormatUint(d.PathsCount, 10)},
				})
				return nil
			})
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "request-payment REFUND",
		Short: "Request payment of a refund by sending an invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := s.daemon.Bolt12RefundRequestPayment(cmd.Context(), model.Bolt12RefundRequestPaymentRequest{Refund: args[0]})
			if err != nil {
				return err
			}
			return s.render.Emit(resp, func() error {
				s.render.Println(resp.Invoice)
				s.render.Notef("payment_id: %s", resp.PaymentID)
				return nil
			})
		},
	})

	return root
}

func (s *runtimeState) newKeysendCommand() *cobra.Command {
	root := &cobra.Command{Use: "keysend", Short: "Spontaneous payments"}

	var (
		nodeID     string
		amountMsat uint64
		records    tlv.List
	)
	send := &cobra.Command{
		Use:   "send",
		Short: "Send a spontaneous payment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			custom := records.Records
			if custom == nil {
				custom = []model.CustomTLV{}
			}
			resp, err := s.daemon.SpontaneousSend(cmd.Context(), model.SpontaneousSendRequest{
				CounterpartyNodeID: nodeID,
				AmountMsat:         amountMsat,
				CustomTLVs:         custom,
			})
			if err != nil {
				return err
			}
			return s.render.Emit(resp, func() error {
				s.render.Println(resp.PaymentID)
				return nil
			})
		},
	}
	send.Flags().StringVar(&nodeID, "node-id", "", "Recipient node public key")
	send.Flags().Uint64Var(&amountMsat, "amount-msat", 0, "Amount in msat")
	send.Flags().Var(&records, "tlv", "Custom TLV record <type>:<hex> (repeatable)")
	_ = send.MarkFlagRequired("node-id")
	_ = send.MarkFlagRequired("amount-msat")
	root.AddCommand(send)

	return root
}

// paymentStatus decorates the known statuses with a colored glyph.
func (s *runtimeState) paymentStatus(status string) string {
	theme := s.render.Theme()
	switch status {
	case model.PaymentSucceeded:
		return s.render.Green(theme.OK + " " + status)
	case model.PaymentPending:
		pending := "..."
		if theme.Unicode {
			pending = "…"
		}
		return s.render.Yellow(pending + " " + status)
	case model.PaymentFailed:
		return s.render.Red(theme.Bad + " " + status)
	default:
		return status
	}
}

func kindDetails(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return "-"
	}
	return string(raw)
}
