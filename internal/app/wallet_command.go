package app

import (
	"github.com/spf13/cobra"

	"github.com/ggonzalez94/rgbldk-cli/internal/model"
	"github.com/ggonzalez94/rgbldk-cli/internal/out"
)

func (s *runtimeState) newWalletCommand() *cobra.Command {
	root := &cobra.Command{Use: "wallet", Short: "On-chain wallet"}

	var forceSats bool
	balance := &cobra.Command{
		Use:   "balance",
		Short: "Show on-chain and lightning balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := s.daemon.Balances(cmd.Context())
			if err != nil {
				return err
			}
			return s.render.Emit(b, func() error {
				s.renderBalances(b, forceSats)
				return nil
			})
		},
	}
	balance.Flags().BoolVar(&forceSats, "sats", false, "Always show amounts in sats")
	root.AddCommand(balance)

	root.AddCommand(&cobra.Command{
		Use:   "address",
		Short: "Generate a new on-chain receive address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := s.daemon.NewAddress(cmd.Context())
			if err != nil {
				return err
			}
			return s.render.Emit(addr, func() error {
				s.render.Println(addr.Address)
				return nil
			})
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "sync",
		Short: "Sync the wallet with the chain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if s.render.IsJSON() {
				raw, err := s.daemon.SyncWallet(ctx)
				if err != nil {
					return err
				}
				return s.render.JSON(rawValue(raw))
			}

			before, err := s.daemon.Balances(ctx)
			if err != nil {
				return err
			}
			if _, err := s.daemon.SyncWallet(ctx); err != nil {
				return err
			}
			after, err := s.daemon.Balances(ctx)
			if err != nil {
				return err
			}

			s.render.Println("Wallet synced.")
			if before.TotalOnchainBalanceSats == after.TotalOnchainBalanceSats &&
				before.SpendableOnchainBalanceSats == after.SpendableOnchainBalanceSats &&
				before.TotalLightningBalanceSats == after.TotalLightningBalanceSats {
				s.render.Println("No balance change.")
				return nil
			}
			s.render.Printf("Balance change: on-chain total %s, spendable %s, lightning %s.\n",
				out.FormatSatsDelta(before.TotalOnchainBalanceSats, after.TotalOnchainBalanceSats),
				out.FormatSatsDelta(before.SpendableOnchainBalanceSats, after.SpendableOnchainBalanceSats),
				out.FormatSatsDelta(before.TotalLightningBalanceSats, after.TotalLightningBalanceSats),
			)
			return nil
		},
	})

	return root
}

func (s *runtimeState) renderBalances(b model.Balances, forceSats bool) {
	rows := [][]string{
		{"On-chain (total)", out.FormatSats(b.TotalOnchainBalanceSats, forceSats)},
		{"On-chain (spendable)", out.FormatSats(b.SpendableOnchainBalanceSats, forceSats)},
		{"Anchor reserve", out.FormatSats(b.TotalAnchorChannelsReserveSats, forceSats)},
		{"Lightning (total)", out.FormatSats(b.TotalLightningBalanceSats, forceSats)},
	}
	s.render.Table([]string{"Asset", "Balance"}, rows, 1)
}
