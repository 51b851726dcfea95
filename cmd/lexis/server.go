package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/kalambet/lexis/internal/api"
	"github.com/kalambet/lexis/internal/config"
	"github.com/kalambet/lexis/internal/dictionary"
	"github.com/kalambet/lexis/internal/favorites"
	"github.com/kalambet/lexis/internal/lookup"
	"github.com/kalambet/lexis/internal/netmon"
	"github.com/kalambet/lexis/internal/notify"
	"github.com/kalambet/lexis/internal/recent"
	"github.com/kalambet/lexis/internal/resource"
	"github.com/kalambet/lexis/internal/session"
	"github.com/kalambet/lexis/internal/storage"
	"github.com/kalambet/lexis/internal/words"
	"github.com/kalambet/lexis/internal/wotd"
)

const (
	suggestPrefixes = 10_000
	suggestMaxWords = 250_000
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the lexis server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		withMCP, _ := cmd.Flags().GetBool("mcp")
		return runServer(withMCP)
	},
}

func init() {
	serveCmd.Flags().Bool("mcp", false, "also serve MCP tools over stdio")
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running lexis server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show lexis system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus(cmd.Context())
	},
}

func pidFilePath(dataDir string) string {
	return filepath.Join(dataDir, "lexis.pid")
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func removePIDFile(path string) {
	os.Remove(path)
}

func parseLogLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func runServer(withMCP bool) error {
	fmt.Fprintf(os.Stderr, "lexis version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Initialize structured logging. Stdout belongs to MCP when enabled.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(cfg.Log.Level)})))

	lookupTimeout, err := cfg.DictionaryTimeout()
	if err != nil {
		return err
	}
	netmonInterval, err := cfg.NetmonInterval()
	if err != nil {
		return err
	}

	// Write PID file. Check if server is already running via health endpoint.
	pidPath := pidFilePath(cfg.Storage.DataDir)
	healthURL := fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Server.Port)
	healthClient := &http.Client{Timeout: 2 * time.Second}
	if resp, err := healthClient.Get(healthURL); err == nil {
		resp.Body.Close()
		if pid, pidErr := readPIDFile(pidPath); pidErr == nil {
			printWarning("lexis is already running (PID %d)", pid)
			return fmt.Errorf("server already running (PID %d)", pid)
		}
		printWarning("lexis is already running on port %d", cfg.Server.Port)
		return fmt.Errorf("server already running on port %d", cfg.Server.Port)
	}
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile(pidPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open storage.
	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing storage: %v\n", err)
		}
	}()

	// Word index: bootstrap once, then serve cached suggestions.
	index, err := words.NewIndex(store, suggestPrefixes, suggestMaxWords)
	if err != nil {
		return err
	}
	defer index.Close()
	if _, err := resource.Collect(words.NewLoader(store, index, cfg.Bootstrap.WordsFile).Initialize(ctx)); err != nil {
		slog.Error("word suggestions unavailable", "error", err)
	}

	dict := dictionary.New(cfg.Dictionary.BaseURL, cfg.Dictionary.RandomURL)
	resolver := lookup.NewResolver(store, dict, store, lookupTimeout)
	favoriteMgr := favorites.NewManager(store)
	recentMgr := recent.NewManager(store)
	slot := wotd.NewSlot(store)

	// Connectivity gates the scheduled job.
	monitor := netmon.New(netmon.HTTPProber(&http.Client{}, cfg.Netmon.URL), netmonInterval)
	monitor.Start(ctx)
	defer monitor.Stop()

	job := wotd.NewJob(dict, resolver, slot, buildNotifier(cfg), cfg.WordOfDay.MaxAttempts)
	scheduler, err := wotd.NewScheduler(store, cfg.WordOfDay.Hour)
	if err != nil {
		return err
	}
	worker := wotd.NewWorker(store, job, scheduler, monitor, time.Minute)
	worker.WakeOn(monitor.Subscribe())
	go worker.Run(ctx)

	sess := session.New(index, favoriteMgr, recentMgr, session.Options{})
	defer sess.Close()

	handler := api.NewAppHandler(api.AppDeps{
		Token:     cfg.Server.Token,
		Index:     index,
		Resolver:  resolver,
		Favorites: favoriteMgr,
		Recent:    recentMgr,
		Slot:      slot,
		Job:       job,
		Session:   sess,
	})
	if cfg.Server.Token == "" {
		slog.Warn("server.token is not set, API authentication is disabled")
	}

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	if withMCP {
		mcpSrv := api.NewMCPServer(api.MCPDeps{
			Resolver:  resolver,
			Favorites: favoriteMgr,
			Recent:    recentMgr,
			Slot:      slot,
		})
		stdioSrv := server.NewStdioServer(mcpSrv)
		go func() {
			if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("MCP stdio server error", "error", err)
			}
		}()
		slog.Info("MCP server started (stdio transport)")
	}

	// Start server in a goroutine.
	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "lexis listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for signal or server error.
	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	// Graceful shutdown with timeout.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildNotifier logs every notification and also shows it on the desktop
// when a session is available. notify.enabled gates both.
func buildNotifier(cfg config.Config) notify.Notifier {
	targets := notify.Multi{notify.Log{Logger: slog.Default()}}
	desktop := notify.Desktop{AppName: "lexis"}
	if desktop.Available() {
		targets = append(targets, desktop)
	} else {
		slog.Debug("desktop notifications unavailable")
	}
	enabled := cfg.Notify.Enabled
	return notify.Gate{
		Allowed: func() bool { return enabled },
		Next:    targets,
	}
}

func stopServer() error {
	cfg, err := config.Load()
	if err != nil {
		printError("could not load config: %v", err)
		return err
	}

	pidPath := pidFilePath(cfg.Storage.DataDir)
	pid, err := readPIDFile(pidPath)
	if err != nil {
		printError("lexis is not running (no PID file)")
		return fmt.Errorf("not running: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		printError("could not find process %d", pid)
		return err
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		printError("could not stop lexis (PID %d): %v", pid, err)
		removePIDFile(pidPath)
		return err
	}

	printSuccess("Sent stop signal to lexis (PID %d)", pid)
	return nil
}

func showStatus(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		// Still show partial status even if config fails.
		printError("config error: %v", err)
		return nil
	}

	client, err := newAPIClient()
	if err != nil {
		return err
	}
	client.httpClient.Timeout = 2 * time.Second

	running := false
	resp, err := client.get(ctx, "/health")
	if err != nil {
		printStatus("Server", "stopped")
	} else {
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			running = true
			printStatus("Server", "running on port %d", cfg.Server.Port)
		} else {
			printStatus("Server", "error (HTTP %d)", resp.StatusCode)
		}
	}

	if running {
		var favs []string
		if resp, err := client.get(ctx, "/favorites"); err == nil && decodeJSON(resp, &favs) == nil {
			printStatus("Favorites", "%d", len(favs))
		}
		var recents []string
		if resp, err := client.get(ctx, "/recent"); err == nil && decodeJSON(resp, &recents) == nil {
			printStatus("Recent words", "%d", len(recents))
		}
		var p wotd.Pair
		if resp, err := client.get(ctx, "/word-of-the-day"); err == nil && decodeJSON(resp, &p) == nil && !p.Empty() {
			printStatus("Word of the day", "%s", p.Word)
		} else {
			printStatus("Word of the day", "not computed yet")
		}
	}

	printStatus("Word of the day hour", "%02d:00", cfg.WordOfDay.Hour)
	printStatus("Notifications", "%s", enabledLabel(cfg.Notify.Enabled))
	printStatus("Auth", "%s", enabledLabel(cfg.Server.Token != ""))
	printStatus("Data dir", "%s", cfg.Storage.DataDir)
	return nil
}

func enabledLabel(on bool) string {
	if on {
		return "enabled"
	}
	return "disabled"
}
