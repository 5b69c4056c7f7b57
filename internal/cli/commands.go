package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mesh-intelligence/contentdesk/internal/overview"
	"github.com/mesh-intelligence/contentdesk/pkg/sqlite"
	"github.com/mesh-intelligence/contentdesk/pkg/types"
)

func newInitCmd(s *session) *cobra.Command {
	var sample bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the configuration and local store",
		Long: `Writes config.yaml to the configuration directory if it does not exist.
With the sqlite backend the data directory and objects.jsonl are created;
--sample fills an empty store with linked example content.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.cfg.Validate(); err != nil {
				return userError(fmt.Errorf("config: %w", err))
			}
			w := out(cmd)
			if s.cfg.Backend == types.BackendCosmic {
				fmt.Fprintf(w, "contentdesk configured for Cosmic bucket %s (config: %s)\n", s.cfg.Cosmic.BucketSlug, s.configDir)
				return nil
			}

			store := sqlite.NewStore(s.log)
			if err := store.Attach(s.cfg.Store()); err != nil {
				return sysError(fmt.Errorf("attach store: %w", err))
			}
			defer store.Detach()
			if sample {
				n, err := store.SeedSample(cmd.Context())
				if err != nil {
					return sysError(fmt.Errorf("seed sample content: %w", err))
				}
				fmt.Fprintf(w, "Added %d sample objects\n", n)
			}
			fmt.Fprintf(w, "contentdesk initialized (config: %s, data: %s)\n", s.configDir, s.cfg.DataDir)
			return nil
		},
	}
	cmd.Flags().BoolVar(&sample, "sample", false, "seed an empty local store with sample content")
	return cmd
}

func newKindsCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the content kinds and their fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			schemas := make([]types.Schema, len(types.Kinds))
			for i, k := range types.Kinds {
				schemas[i] = types.SchemaFor(k)
			}
			if s.flags.jsonMode {
				return printJSON(out(cmd), schemas)
			}
			rows := make([][]string, 0)
			for _, sc := range schemas {
				for _, f := range sc.Fields {
					req := ""
					if f.Required {
						req = "yes"
					}
					rows = append(rows, []string{sc.Kind.String(), f.Name, string(f.Type), req})
				}
			}
			printTable(out(cmd), []string{"KIND", "FIELD", "TYPE", "REQUIRED"}, rows)
			return nil
		},
	}
}

func newOverviewCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Show counts per kind and recent activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, release, err := s.catalog()
			if err != nil {
				return err
			}
			defer release()

			ov, err := overview.Load(cmd.Context(), s.log, overview.Sources(catalog)...)
			if err != nil {
				return sysError(err)
			}
			w := out(cmd)
			if s.flags.jsonMode {
				return printJSON(w, ov)
			}

			counts := make([][]string, len(types.Kinds))
			for i, k := range types.Kinds {
				counts[i] = []string{k.Label(), strconv.Itoa(ov.Counts[k])}
			}
			printTable(w, []string{"KIND", "COUNT"}, counts)

			if len(ov.Recent) == 0 {
				fmt.Fprintln(w, "No recent activity")
				return nil
			}
			recent := make([][]string, len(ov.Recent))
			for i, a := range ov.Recent {
				recent[i] = []string{a.Label, a.Title, formatDate(a.ModifiedAt)}
			}
			fmt.Fprintln(w, "Recent activity")
			printTable(w, []string{"KIND", "TITLE", "MODIFIED"}, recent)
			return nil
		},
	}
}

// withKind parses the kind argument, attaches the store, and runs fn with
// the kind's command set.
func (s *session) withKind(name string, fn func(kindOps) error) error {
	kind, err := types.ParseKind(name)
	if err != nil {
		return userError(err)
	}
	catalog, release, err := s.catalog()
	if err != nil {
		return err
	}
	defer release()
	return fn(opsFor(catalog, kind))
}

func newListCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "list <kind>",
		Short: "List objects of a kind, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.withKind(args[0], func(ops kindOps) error {
				return ops.list(cmd.Context(), out(cmd), s.flags.jsonMode)
			})
		},
	}
}

func newGetCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "get <kind> <id>",
		Short: "Show one object as JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.withKind(args[0], func(ops kindOps) error {
				return ops.get(cmd.Context(), out(cmd), args[1])
			})
		},
	}
}

// editFlags registers --title, --set, and --item on cmd.
func editFlags(cmd *cobra.Command, e *edits, title *string) {
	cmd.Flags().StringVar(title, "title", "", "object title")
	cmd.Flags().StringArrayVar(&e.sets, "set", nil, "set a metadata field (field=value, repeatable)")
	cmd.Flags().StringArrayVar(&e.items, "item", nil, "append to a list field (field=value, repeatable; replaces the existing list)")
}

func newCreateCmd(s *session) *cobra.Command {
	var (
		e     edits
		title string
	)
	cmd := &cobra.Command{
		Use:   "create <kind>",
		Short: "Create an object",
		Example: `  contentdesk create services --title "Web Design" --set service_name="Web Design" \
    --set starting_price=500 --item key_features=Responsive --item key_features=SEO`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e.title = &title
			return s.withKind(args[0], func(ops kindOps) error {
				return ops.create(cmd.Context(), out(cmd), e)
			})
		},
	}
	editFlags(cmd, &e, &title)
	return cmd
}

func newUpdateCmd(s *session) *cobra.Command {
	var (
		e     edits
		title string
	)
	cmd := &cobra.Command{
		Use:   "update <kind> <id>",
		Short: "Update an object; unspecified fields keep their values",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("title") {
				e.title = &title
			}
			return s.withKind(args[0], func(ops kindOps) error {
				return ops.update(cmd.Context(), out(cmd), args[1], e)
			})
		},
	}
	editFlags(cmd, &e, &title)
	return cmd
}

func newDeleteCmd(s *session) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <kind> <id>",
		Short: "Delete an object after confirmation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := out(cmd)
			in := cmd.InOrStdin()
			if !yes {
				if f, ok := in.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
					return userError(errNoTerminal)
				}
			}
			confirm := promptConfirmer(in, w)
			if yes {
				confirm = alwaysConfirm
			}
			return s.withKind(args[0], func(ops kindOps) error {
				return ops.remove(cmd.Context(), w, args[1], confirm)
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}
