// Copyright 2025 James Ross

// Command launcherd is the daemon binary: the default subcommand starts the
// ApplicationManager and its rpcserver HTTP surface; open and settings are
// thin client calls against an already-running daemon, used by the (out of
// scope) window shell and OS launcher entries.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gauntlet-host/launcherd/internal/appmanager"
	"github.com/gauntlet-host/launcherd/internal/config"
	"github.com/gauntlet-host/launcherd/internal/globalshortcut"
	"github.com/gauntlet-host/launcherd/internal/obs"
	"github.com/gauntlet-host/launcherd/internal/plugindownload"
	"github.com/gauntlet-host/launcherd/internal/pluginruntime"
	"github.com/gauntlet-host/launcherd/internal/repository"
	"github.com/gauntlet-host/launcherd/internal/rpcserver"
	"github.com/gauntlet-host/launcherd/internal/runstatus"
	"github.com/gauntlet-host/launcherd/internal/searchindex"
	"github.com/gauntlet-host/launcherd/internal/widgetmodel"
)

var (
	version    = "dev"
	configPath string
	rpcAddr    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "launcherd",
		Short:   "launcherd is the plugin-launcher host daemon",
		Version: version,
		RunE:    runServe,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./launcherd.yaml", "path to the config file")
	rootCmd.PersistentFlags().StringVar(&rpcAddr, "rpc-addr", "", "override the rpc server address for client subcommands")

	rootCmd.AddCommand(newOpenCmd())
	rootCmd.AddCommand(newSettingsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open",
		Short: "show the launcher window on an already-running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postClientRequest(cmd.Context(), "/api/v1/show-window", nil)
		},
	}
}

func newSettingsCmd() *cobra.Command {
	var pane string
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "open the settings window, optionally to a specific pane",
		RunE: func(cmd *cobra.Command, args []string) error {
			if pane != "" {
				os.Setenv("SETTINGS_ENV", pane)
			}
			return postClientRequest(cmd.Context(), "/api/v1/show-settings-window", map[string]string{"pane": pane})
		},
	}
	cmd.Flags().StringVar(&pane, "pane", "", "settings pane to land on, carried via SETTINGS_ENV")
	return cmd
}

// postClientRequest is the thin HTTP call shared by open and settings: both
// are one-shot notifications to a daemon assumed to already be running.
func postClientRequest(ctx context.Context, path string, body interface{}) error {
	addr := rpcAddr
	if addr == "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config for default rpc addr: %w", err)
		}
		addr = cfg.RPC.ListenAddr
	}
	url := "http://" + strings.TrimPrefix(addr, "http://") + path

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return err
		}
	}
	client := &http.Client{Timeout: 5 * time.Second}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(payload)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("contacting launcherd at %s: %w", addr, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("launcherd returned status %d", resp.StatusCode)
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := obs.NewLogger(cfg.Observability.LogLevel)
	if err != nil {
		return fmt.Errorf("constructing logger: %w", err)
	}
	defer logger.Sync()

	tp, err := obs.MaybeInitTracing(cfg)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}

	repo, err := repository.Open(cfg.Repository.Path, cfg.Repository.MigrationsTableID, logger)
	if err != nil {
		return fmt.Errorf("opening repository: %w", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Warn("repository close error", zap.Error(err))
		}
	}()

	var manager *appmanager.ApplicationManager
	index := searchindex.New(cfg.Search.FrecencyHalfLife, cfg.Search.MaxResults, func() {
		if manager != nil {
			manager.NotifySearchListRefreshed()
		}
	})

	backend := newHotkeyBackend(logger)
	shortcuts := globalshortcut.New(backend)

	runStatus := runstatus.New()
	downloader := plugindownload.New(downloadWorkDir(cfg), logger)
	schema := widgetmodel.DefaultSchema()
	assetStore := appmanager.NewDiskAssetStore(cfg.Plugins.Dir)
	clipboard := &pluginruntime.FakeClipboard{}
	limits := pluginruntime.Limits{
		MaxMemoryMB:     cfg.Plugins.MaxMemoryMB,
		MaxExecutionMs:  cfg.Plugins.MaxExecutionMs,
		MaxGoroutines:   cfg.Plugins.MaxGoroutines,
		IdleTimeout:     cfg.Plugins.IdleTimeout,
		HeartbeatPeriod: cfg.Plugins.HeartbeatPeriod,
	}

	manager = appmanager.New(repo, index, shortcuts, runStatus, downloader, schema, assetStore, clipboard, limits, cfg.Plugins.Dir, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := manager.LoadBundledPlugins(ctx, cfg.Plugins.BundledPluginsGlob); err != nil {
		logger.Warn("loading bundled plugins failed", zap.Error(err))
	}
	if _, err := manager.Setup(ctx); err != nil {
		return fmt.Errorf("setting up application manager: %w", err)
	}

	metricsSrv := obs.StartHTTPServer(cfg, func(context.Context) error { return nil })
	rpcSrv := rpcserver.NewServer(cfg.RPC.ListenAddr, manager, logger)

	rpcErrCh := make(chan error, 1)
	go func() {
		if err := rpcSrv.Start(); err != nil && err != http.ErrServerClosed {
			rpcErrCh <- err
			return
		}
		rpcErrCh <- nil
	}()

	logger.Info("launcherd started", zap.String("rpc_addr", cfg.RPC.ListenAddr))

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case err := <-rpcErrCh:
		if err != nil {
			logger.Error("rpc server exited unexpectedly", zap.Error(err))
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := rpcSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("rpc server shutdown error", zap.Error(err))
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("metrics server shutdown error", zap.Error(err))
	}
	manager.Close()
	if tp != nil {
		if err := obs.TracerShutdown(shutdownCtx, tp); err != nil {
			logger.Warn("tracer shutdown error", zap.Error(err))
		}
	}
	return nil
}

// newHotkeyBackend picks the platform hotkey backend: LinuxBackend is the
// only real (if stubbed-out) implementation in this repo; everywhere else
// falls back to FakeBackend so the dispatcher still wires up end-to-end.
func newHotkeyBackend(logger *zap.Logger) globalshortcut.HotkeyBackend {
	if runtime.GOOS == "linux" {
		return globalshortcut.NewLinuxBackend()
	}
	logger.Warn("no platform hotkey backend for this OS, shortcuts will not register", zap.String("os", runtime.GOOS))
	return globalshortcut.NewFakeBackend()
}

func downloadWorkDir(cfg *config.Config) string {
	return cfg.Plugins.Dir + "/.download-work"
}
