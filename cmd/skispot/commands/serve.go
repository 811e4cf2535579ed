package commands

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/nolanlove/skiapp/pkg/geocode"
	"github.com/nolanlove/skiapp/pkg/resorts"
	"github.com/nolanlove/skiapp/pkg/routing"
	"github.com/nolanlove/skiapp/pkg/scraper"
	"github.com/nolanlove/skiapp/pkg/server"
	"github.com/nolanlove/skiapp/pkg/telemetry"
)

// errConfigChanged signals the serve loop to reload and restart.
var errConfigChanged = errors.New("config changed")

func newServeCommand() *cobra.Command {
	var watchConfig bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the SkiSpot HTTP server",
		Long: `Run the SkiSpot HTTP server.

Serves the search UI and API, refreshing resort data from upstream
snow reports as needed.`,
		Example: `  # Serve with defaults on :8000
  skispot serve

  # Serve with a config file and restart on config changes
  skispot serve --config config.yaml --watch-config`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for {
				err := runServer(cmd.Context(), watchConfig)
				if errors.Is(err, errConfigChanged) {
					continue
				}
				return err
			}
		},
	}

	cmd.Flags().BoolVar(&watchConfig, "watch-config", false, "restart the server when the config file changes")

	return cmd
}

// runServer builds the full service stack and serves until the context
// is canceled or, with watch enabled, the config file changes.
func runServer(ctx context.Context, watchConfig bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, metrics, err := buildTelemetry(cfg)
	if err != nil {
		return err
	}

	tracer, err := buildTracer(cfg)
	if err != nil {
		return err
	}
	defer tracer.Shutdown(context.Background())

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	scr := scraper.New(scraper.Config{
		BaseURL:        cfg.Scraper.BaseURL,
		UserAgent:      cfg.Scraper.UserAgent,
		Timeout:        cfg.Scraper.Timeout.Std(),
		Concurrency:    cfg.Scraper.Concurrency,
		CacheTTL:       cfg.Scraper.CacheTTL.Std(),
		FreshThreshold: cfg.Scraper.FreshThreshold,
	}, store, logger, metrics, tracer)

	nominatim, err := geocode.NewClient(geocode.ClientConfig{
		BaseURL:   cfg.Geocoder.BaseURL,
		UserAgent: cfg.Geocoder.UserAgent,
		Timeout:   cfg.Geocoder.Timeout.Std(),
	}, logger, metrics)
	if err != nil {
		return err
	}
	geocoder := geocode.NewCachedGeocoder(nominatim, store, cfg.Geocoder.CacheTTL.Std(), logger, metrics)

	router := routing.NewClient(routing.ClientConfig{
		BaseURL: cfg.Routing.BaseURL,
		Timeout: cfg.Routing.Timeout.Std(),
	}, logger, metrics)

	service := resorts.NewService(resorts.Config{
		RoutingConcurrency:  cfg.Search.RoutingConcurrency,
		MaxRoutedCandidates: cfg.Routing.MaxRoutedCandidates,
	}, geocoder, scr, router, logger, metrics, tracer)

	srv := server.New(server.Config{
		Address:         cfg.Server.Address(),
		ReadTimeout:     cfg.Server.ReadTimeout.Std(),
		WriteTimeout:    cfg.Server.WriteTimeout.Std(),
		ShutdownTimeout: cfg.Server.ShutdownTimeout.Std(),
	}, service, store, logger, metrics)

	serveCtx := ctx
	reload := make(chan struct{}, 1)
	if watchConfig && configPath != "" {
		var cancel context.CancelFunc
		serveCtx, cancel = context.WithCancel(ctx)
		defer cancel()

		stop, err := watchConfigFile(configPath, logger, func() {
			select {
			case reload <- struct{}{}:
			default:
			}
			cancel()
		})
		if err != nil {
			return err
		}
		defer stop()
	}

	if err := srv.Run(serveCtx); err != nil {
		return err
	}

	select {
	case <-reload:
		return errConfigChanged
	default:
	}
	return nil
}

// watchConfigFile watches the config file's directory (editors often
// replace the file rather than write in place) and invokes onChange
// when it is modified.
func watchConfigFile(path string, logger *telemetry.Logger, onChange func()) (func() error, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	target := filepath.Clean(path)
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) {
					logger.Zerolog().Info().Str("path", target).Msg("config file changed, restarting")
					onChange()
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.WithError(err).Warn("config watcher error")
			}
		}
	}()

	return watcher.Close, nil
}
