package app

import (
	"github.com/spf13/cobra"

	clierr "github.com/ggonzalez94/rgbldk-cli/internal/errors"
	"github.com/ggonzalez94/rgbldk-cli/internal/version"
)

func nextStepHint() string {
	return "Next: run `" + version.CLIName + " node status` to verify the connection."
}

func (s *runtimeState) newCtxCommand() *cobra.Command {
	root := &cobra.Command{Use: "ctx", Short: "Manage named daemon contexts"}

	root.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: "List contexts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap := s.contexts.Snapshot()
			return s.render.Emit(snap, func() error {
				current := s.contexts.CurrentName()
				rows := make([][]string, 0, len(snap.Contexts))
				for _, name := range s.contexts.Names() {
					marker := ""
					if name == current {
						marker = "*"
					}
					rows = append(rows, []string{marker, name, snap.Contexts[name].URL})
				}
				s.render.Table([]string{"Current", "Name", "URL"}, rows)
				return nil
			})
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the current context",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, entry, err := s.contexts.Current()
			if err != nil {
				return clierr.New(clierr.CodeConfig, err.Error())
			}
			return s.render.Emit(entry, func() error {
				s.render.Printf("%s -> %s\n", name, entry.URL)
				return nil
			})
		},
	})

	var addURL string
	var addUse bool
	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Add or replace a context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			current, err := s.contexts.Add(name, addURL, addUse)
			if err != nil {
				return clierr.Wrap(clierr.CodeUsage, "add context", err)
			}
			if err := s.saveContexts(); err != nil {
				return err
			}
			return s.render.Emit(s.contexts.Snapshot(), func() error {
				if current {
					s.render.Printf("Context %q created and set as active.\n", name)
				} else {
					s.render.Printf("Context %q created.\n", name)
				}
				s.render.Println(nextStepHint())
				return nil
			})
		},
	}
	add.Flags().StringVar(&addURL, "url", "", "Daemon base URL, e.g. http://127.0.0.1:8500")
	add.Flags().BoolVar(&addUse, "use", false, "Make this the current context")
	_ = add.MarkFlagRequired("url")
	root.AddCommand(add)

	root.AddCommand(&cobra.Command{
		Use:   "use NAME",
		Short: "Switch the current context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := s.contexts.Use(name); err != nil {
				return clierr.New(clierr.CodeConfig, err.Error())
			}
			if err := s.saveContexts(); err != nil {
				return err
			}
			return s.render.Emit(s.contexts.Snapshot(), func() error {
				s.render.Printf("Switched to context %q.\n", name)
				s.render.Println(nextStepHint())
				return nil
			})
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "rm NAME",
		Short: "Remove a context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			s.contexts.Remove(name)
			if err := s.saveContexts(); err != nil {
				return err
			}
			return s.render.Emit(s.contexts.Snapshot(), func() error {
				s.render.Printf("Context %q removed.\n", name)
				return nil
			})
		},
	})

	return root
}

func (s *runtimeState) saveContexts() error {
	if err := s.contexts.Save(); err != nil {
		return clierr.Wrap(clierr.CodeConfig, "save contexts", err)
	}
	s.logger.Debug("saved contexts", "path", s.contexts.Path())
	return nil
}
