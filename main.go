package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"opconsole/internal/builder"
	"opconsole/internal/catalog"
	"opconsole/internal/config"
	"opconsole/internal/eventbus"
	"opconsole/internal/ignore"
	"opconsole/internal/logging"
	"opconsole/internal/remote"
	"opconsole/internal/selection"
	"opconsole/internal/ui"
)

// options are the flags shared by every command
type options struct {
	configPath string
	verbose    bool
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "opconsole",
		Short:        "Terminal console for the catalog and export scripts",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(cmd.Context(), opts)
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default ./"+config.FileName+")")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(newPreviewCmd(opts), newScriptsCmd(opts), newInitCmd(opts))
	return root
}

// loadConfig reads the config file. A missing default file yields defaults;
// a missing explicit file is an error.
func loadConfig(opts *options) (*config.Config, error) {
	svc := config.NewConfigService(opts.configPath)
	if opts.configPath != "" {
		return svc.LoadFromPath(opts.configPath)
	}
	return svc.Load()
}

func newInitCmd(opts *options) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := config.NewConfigService(opts.configPath)
			if _, err := os.Stat(svc.Path()); err == nil && !force {
				return fmt.Errorf("config file %s already exists, use --force to overwrite it", svc.Path())
			}
			if err := svc.Save(config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "wrote", svc.Path())
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}

func runConsole(ctx context.Context, opts *options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log.File, cfg.Log.Level, opts.verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	bus := eventbus.New(logger)
	defer bus.Close()

	client, err := remote.NewClient(cfg.Server.URL, remote.NewHTTPClient(cfg.Timeout()),
		remote.WithLogger(logger),
		remote.WithApplyPath(cfg.Server.ApplyPath),
		remote.WithRunPath(cfg.Server.RunPath))
	if err != nil {
		return err
	}

	loader := catalog.NewLoader(client.HTTPClient(), cfg.CatalogSources(client.Resolve),
		catalog.WithLogger(logger),
		catalog.WithBus(bus))
	ignoreSync := ignore.NewSync(
		ignore.NewLoader(client.HTTPClient(), cfg.IgnoreSources(client.Resolve), logger),
		client, bus, logger)

	model := ui.NewModel(ui.Deps{
		Config:    cfg,
		Registry:  builder.NewRegistry(cfg.Scripts.Python, builder.WithLogger(logger), builder.WithBus(bus)),
		Catalog:   loader,
		Ignore:    ignoreSync,
		Selection: selection.New(bus),
		Runner:    client,
		Bus:       bus,
		Logger:    logger,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	model.SetProgram(p)

	// Set up event forwarding to UI
	eventChan := make(chan eventbus.DomainEvent, 100)
	forward := func(e eventbus.DomainEvent) {
		select {
		case eventChan <- e:
		default:
			logger.Warn("event channel full, dropping event", zap.String("type", string(e.Type())))
		}
	}
	for _, t := range []eventbus.EventType{
		eventbus.EventError,
		eventbus.EventCommandFallback,
		eventbus.EventCatalogLoadStarted,
		eventbus.EventConfigSaved,
	} {
		unsubscribe := bus.Subscribe(t, forward)
		defer unsubscribe()
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case event := <-eventChan:
				p.Send(ui.EventMsg{Event: event})
			case <-done:
				return
			}
		}
	}()

	logger.Info("console started",
		zap.String("server", cfg.Server.URL),
		zap.Int("catalog_sources", len(loader.Sources())))

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("failed to run console: %w", err)
	}
	return nil
}
