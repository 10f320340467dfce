package app

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	clierr "github.com/ggonzalez94/rgbldk-cli/internal/errors"
)

func (s *runtimeState) newNodeCommand() *cobra.Command {
	root := &cobra.Command{Use: "node", Short: "Node status and identity"}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show daemon version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := s.daemon.Version(cmd.Context())
			if err != nil {
				return err
			}
			return s.render.Emit(v, func() error {
				s.render.Fields(objectRows(v))
				return nil
			})
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "health",
		Short: "Check daemon liveness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := s.daemon.Health(cmd.Context())
			if err != nil {
				return err
			}
			return s.render.Emit(res, func() error {
				s.render.Checks("node health", res.OK, res.Checks)
				return nil
			})
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "ready",
		Short: "Check node readiness (exit 1 when not ready)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := s.daemon.Ready(cmd.Context())
			if err != nil {
				return err
			}
			if err := s.render.Emit(res, func() error {
				s.render.Checks("node ready", res.OK, res.Checks)
				return nil
			}); err != nil {
				return err
			}
			if !res.OK {
				return reportedError{err: clierr.New(clierr.CodeNotReady, "node is not ready")}
			}
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show node runtime status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := s.daemon.Status(cmd.Context())
			if err != nil {
				return err
			}
			return s.render.Emit(st, func() error {
				s.render.Fields([][]string{
					{"is_running", strconv.FormatBool(st.IsRunning)},
					{"p2p_is_listening", strconv.FormatBool(st.IsListening)},
					{"best_block_height", strconv.FormatUint(uint64(st.BestBlockHeight), 10)},
				})
				return nil
			})
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "id",
		Short: "Print the node public key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := s.daemon.NodeID(cmd.Context())
			if err != nil {
				return err
			}
			return s.render.Emit(id, func() error {
				s.render.Println(id.NodeID)
				return nil
			})
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "listen",
		Short: "List P2P listening addresses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addrs, err := s.daemon.ListeningAddresses(cmd.Context())
			if err != nil {
				return err
			}
			return s.render.Emit(addrs, func() error {
				for _, a := range addrs.Addresses {
					s.render.Println(a)
				}
				return nil
			})
		},
	})

	return root
}

// objectRows flattens a JSON object into sorted Field/Value rows. Strings
// print bare, everything else as compact JSON.
func objectRows(v map[string]any) [][]string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		var val string
		switch x := v[k].(type) {
		case string:
			val = x
		default:
			buf, err := json.Marshal(x)
			if err != nil {
				val = "-"
			} else {
				val = string(buf)
			}
		}
		rows = append(rows, []string{k, val})
	}
	return rows
}
