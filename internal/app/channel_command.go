package app

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/ggonzalez94/rgbldk-cli/internal/model"
	"github.com/ggonzalez94/rgbldk-cli/internal/out"
	"github.com/ggonzalez94/rgbldk-cli/internal/policy"
)

const forceCloseWarning = "About to force-close a channel (potentially costly/time-locked)."

func (s *runtimeState) newChannelCommand() *cobra.Command {
	root := &cobra.Command{Use: "channel", Short: "Lightning channels"}

	root.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: "List channels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			channels, err := s.daemon.Channels(cmd.Context())
			if err != nil {
				return err
			}
			return s.render.Emit(channels, func() error {
				rows := make([][]string, 0, len(channels))
				for _, c := range channels {
					rows = append(rows, []string{
						s.render.ID(c.UserChannelID),
						s.render.ID(c.CounterpartyNodeID),
						out.Comma(c.ChannelValueSats),
						yesNo(c.IsChannelReady),
						yesNo(c.IsUsable),
					})
				}
				s.render.Table([]string{"User Channel ID", "Counterparty", "Capacity (sats)", "Ready", "Usable"}, rows, 2)
				return nil
			})
		},
	})

	var (
		openNodeID  string
		openAddr    string
		openAmount  uint64
		openPush    uint64
		openPrivate bool
	)
	open := &cobra.Command{
		Use:   "open",
		Short: "Open a channel to a peer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := model.OpenChannelRequest{
				NodeID:                 openNodeID,
				Address:                openAddr,
				ChannelAmountSats:      openAmount,
				PushToCounterpartyMsat: optUint64(cmd, "push-msat", openPush),
			}
			if openPrivate {
				announce := false
				req.Announce = &announce
			}
			resp, err := s.daemon.OpenChannel(cmd.Context(), req)
			if err != nil {
				return err
			}
			return s.render.Emit(resp, func() error {
				s.render.Println(resp.UserChannelID)
				return nil
			})
		},
	}
	open.Flags().StringVar(&openNodeID, "node-id", "", "Counterparty node public key")
	open.Flags().StringVar(&openAddr, "addr", "", "Counterparty address host:port")
	open.Flags().Uint64Var(&openAmount, "amount-sats", 0, "Channel capacity in sats")
	open.Flags().Uint64Var(&openPush, "push-msat", 0, "Amount pushed to the counterparty at open")
	open.Flags().BoolVar(&openPrivate, "private", false, "Do not announce the channel")
	_ = open.MarkFlagRequired("node-id")
	_ = open.MarkFlagRequired("addr")
	_ = open.MarkFlagRequired("amount-sats")
	root.AddCommand(open)

	root.AddCommand(s.newCloseCommand(false))
	root.AddCommand(s.newCloseCommand(true))

	return root
}

// newCloseCommand builds close, or force-close when force is set. Force-close
// is confirmed before any request is sent.
func (s *runtimeState) newCloseCommand(force bool) *cobra.Command {
	use, short, done := "close", "Cooperatively close a channel", "Channel close initiated."
	if force {
		use, short, done = "force-close", "Force-close a channel", "Channel force-close initiated."
	}
	var req model.CloseChannelRequest
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				raw json.RawMessage
				err error
			)
			if force {
				if err := policy.Confirm(s.prompt(), s.settings.Yes, forceCloseWarning); err != nil {
					return err
				}
				raw, err = s.daemon.ForceCloseChannel(cmd.Context(), req)
			} else {
				raw, err = s.daemon.CloseChannel(cmd.Context(), req)
			}
			if err != nil {
				return err
			}
			return s.render.Emit(rawValue(raw), func() error {
				s.render.Println(done)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&req.UserChannelID, "user-channel-id", "", "User channel id")
	cmd.Flags().StringVar(&req.CounterpartyNodeID, "counterparty-node-id", "", "Counterparty node public key")
	_ = cmd.MarkFlagRequired("user-channel-id")
	_ = cmd.MarkFlagRequired("counterparty-node-id")
	return cmd
}
