package app

import (
	"github.com/spf13/cobra"

	"github.com/ggonzalez94/rgbldk-cli/internal/model"
)

func (s *runtimeState) newPeerCommand() *cobra.Command {
	root := &cobra.Command{Use: "peer", Short: "Lightning peers"}

	root.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: "List peers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			peers, err := s.daemon.Peers(cmd.Context())
			if err != nil {
				return err
			}
			return s.render.Emit(peers, func() error {
				rows := make([][]string, 0, len(peers))
				for _, p := range peers {
					rows = append(rows, []string{s.render.ID(p.NodeID), p.Address, yesNo(p.IsConnected), yesNo(p.IsPersisted)})
				}
				s.render.Table([]string{"Node ID", "Address", "Connected", "Persisted"}, rows)
				return nil
			})
		},
	})

	var persist bool
	connect := &cobra.Command{
		Use:   "connect NODE_ID ADDR",
		Short: "Connect to a peer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := s.daemon.ConnectPeer(cmd.Context(), model.PeerConnectRequest{
				NodeID:  args[0],
				Address: args[1],
				Persist: persist,
			})
			if err != nil {
				return err
			}
			return s.render.Emit(rawValue(raw), func() error {
				s.render.Println("Peer connected.")
				return nil
			})
		},
	}
	connect.Flags().BoolVar(&persist, "persist", false, "Reconnect to this peer on restart")
	root.AddCommand(connect)

	root.AddCommand(&cobra.Command{
		Use:   "disconnect NODE_ID",
		Short: "Disconnect from a peer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := s.daemon.DisconnectPeer(cmd.Context(), model.PeerDisconnectRequest{NodeID: args[0]})
			if err != nil {
				return err
			}
			return s.render.Emit(rawValue(raw), func() error {
				s.render.Println("Peer disconnected.")
				return nil
			})
		},
	})

	return root
}
