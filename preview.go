package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"opconsole/internal/builder"
	"opconsole/internal/domain"
	"opconsole/internal/form"
	"opconsole/internal/ignore"
)

func newPreviewCmd(opts *options) *cobra.Command {
	var (
		sets    []string
		checks  []string
		selects []string
	)
	cmd := &cobra.Command{
		Use:   "preview <script>",
		Short: "Print the command a script form would produce",
		Long: `Print the command a script form would produce.

Fields are given with --set name=value; repeat --set for multi-valued fields.
Checkboxes are turned on with --check name. Selection entries for the cleanup
and export scripts are given with --select TYPE::ID[=name].

When the fields are invalid the script's default invocation is printed and the
reason goes to stderr.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			values, err := parseFormFlags(sets, checks)
			if err != nil {
				return err
			}
			entries, err := parseSelectFlags(selects)
			if err != nil {
				return err
			}

			logger := zap.NewNop()
			if opts.verbose {
				if logger, err = zap.NewDevelopment(); err != nil {
					return fmt.Errorf("failed to initialize logger: %w", err)
				}
			}

			registry := builder.NewRegistry(cfg.Scripts.Python, builder.WithLogger(logger))
			id := builder.ScriptID(args[0])
			in := builder.Input{Form: values, Selection: entries}

			line, err := registry.Build(id, in)
			if errors.Is(err, builder.ErrUnknownScript) {
				return fmt.Errorf("%w (known: %s)", err, joinScripts(registry.Scripts()))
			}
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v; using the default command\n", err)
				line = registry.Preview(id, in)
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "set a field (name=value), repeatable")
	cmd.Flags().StringArrayVar(&checks, "check", nil, "turn a checkbox field on, repeatable")
	cmd.Flags().StringArrayVar(&selects, "select", nil, "add a selection entry (TYPE::ID[=name]), repeatable")
	return cmd
}

func newScriptsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "scripts",
		Short: "List the scripts and their default invocations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			registry := builder.NewRegistry(cfg.Scripts.Python)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, id := range registry.Scripts() {
				b, _ := registry.Get(id)
				fmt.Fprintf(w, "%s\t%s\t%s\n", id, b.Title(), b.Default())
			}
			return w.Flush()
		},
	}
}

// parseFormFlags turns --set and --check flags into form values. Repeated
// names accumulate, which is how multi-valued fields are expressed.
func parseFormFlags(sets, checks []string) (form.Values, error) {
	v := form.Values{}
	for _, s := range sets {
		name, value, ok := strings.Cut(s, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --set %q, want name=value", s)
		}
		v.Add(name, value)
	}
	for _, name := range checks {
		if name = strings.TrimSpace(name); name != "" {
			v.Toggle(name, true)
		}
	}
	return v, nil
}

// parseSelectFlags parses TYPE::ID[=name] selection entries
func parseSelectFlags(selects []string) ([]domain.SelectionEntry, error) {
	entries := make([]domain.SelectionEntry, 0, len(selects))
	for _, s := range selects {
		key, name, _ := strings.Cut(s, "=")
		id, err := ignore.ParseCompositeKey(key)
		if err != nil {
			return nil, fmt.Errorf("invalid --select %q: %w", s, err)
		}
		if !id.Type.Valid() {
			return nil, fmt.Errorf("invalid --select %q: unknown source type %s", s, id.Type)
		}
		entries = append(entries, domain.SelectionEntry{Type: id.Type, ID: id.ID, Name: name})
	}
	return entries, nil
}

func joinScripts(ids []builder.ScriptID) string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = string(id)
	}
	return strings.Join(names, ", ")
}
