package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/miosa/osa-history/app"
	"github.com/miosa/osa-history/client"
	"github.com/miosa/osa-history/config"
	"github.com/miosa/osa-history/history"
	"github.com/miosa/osa-history/msg"
	"github.com/miosa/osa-history/style"
)

var version = "dev"

const defaultBackend = "http://localhost:8089"

func main() {
	profileFlag := flag.String("profile", "", "Named profile for state isolation (~/.osa/profiles/<name>)")
	dbFlag := flag.String("db", "", "History database (default <profile>/history.db)")
	sessionFlag := flag.String("session", "main", "Session to open")
	importFlag := flag.Bool("import", false, "Copy --session from the backend into the local store while browsing")
	remoteFlag := flag.Bool("remote", false, "Browse --session straight from the backend")
	seedFlag := flag.Int("seed", 0, "Fill --session with N generated messages before starting")
	logFlag := flag.String("log", "", "Log file (default <profile>/osa-history.log)")
	debugFlag := flag.Bool("debug", false, "Log at debug level")
	noColor := flag.Bool("no-color", false, "Disable ANSI colors")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.BoolVar(showVersion, "V", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("osa-history %s\n", version)
		os.Exit(0)
	}
	if *noColor {
		os.Setenv("NO_COLOR", "1")
	}

	home, _ := os.UserHomeDir()
	profileDir := filepath.Join(home, ".osa")
	if *profileFlag != "" {
		profileDir = filepath.Join(home, ".osa", "profiles", *profileFlag)
	}
	os.MkdirAll(profileDir, 0755)

	cfg, err := config.Load(profileDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "osa-history: %v\n", err)
		os.Exit(1)
	}
	if *dbFlag != "" {
		cfg.DB = *dbFlag
	}
	if *logFlag != "" {
		cfg.LogFile = *logFlag
	}

	log, closeLog := openLog(cfg.LogFile, *debugFlag)
	defer closeLog()
	if err := cfg.Validate(); err != nil {
		log.Warn("config corrected", "err", err)
	}

	dark := lipgloss.HasDarkBackground(os.Stdin, os.Stdout)
	style.SetTheme(style.ResolveTheme(cfg.Theme, dark))

	c := client.New(backendURL(cfg))
	if token := backendToken(cfg, profileDir); token != "" {
		c.SetToken(token)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := app.Options{
		Config:         cfg,
		Version:        version,
		DarkBackground: dark,
		Log:            log,
	}

	var (
		src   history.Source
		store *history.Store
	)
	if *remoteFlag {
		remote := history.NewRemote(c)
		src = remote
		opts.Catalog = remote
		opts.Source = backendURL(cfg)
	} else {
		store, err = history.Open(cfg.DB)
		if err != nil {
			fmt.Fprintf(os.Stderr, "osa-history: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
		if *seedFlag > 0 {
			if err := history.Seed(ctx, store, *sessionFlag, *seedFlag); err != nil {
				fmt.Fprintf(os.Stderr, "osa-history: seed: %v\n", err)
				os.Exit(1)
			}
		}
		src = store
		opts.Catalog = store
		opts.Source = cfg.DB
	}

	loader := history.NewLoader(src, *sessionFlag, cfg.Loader.PageSize, cfg.Loader.LoadsPerSecond, log)
	defer loader.Close()
	opts.Loader = loader

	p := tea.NewProgram(app.New(opts))

	if *remoteFlag || *importFlag {
		go checkBackend(ctx, p, c, log)
	}

	if *importFlag && store != nil {
		session := *sessionFlag
		go func() {
			n, err := history.Import(ctx, history.NewRemote(c), store, session, cfg.Loader.PageSize)
			if err != nil {
				log.Error("import failed", "session", session, "err", err)
			}
			p.Send(msg.ImportResult{Session: session, Count: n, Err: err})
		}()
	}

	err = config.Watch(ctx, config.Path(profileDir), 0, func(next *config.Config, err error) {
		p.Send(msg.ConfigReloaded{Config: next, Err: err})
	})
	if err != nil {
		log.Warn("config not watched", "err", err)
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "osa-history: %v\n", err)
		os.Exit(1)
	}
}

// checkBackend warns in the status bar when the backend does not answer.
func checkBackend(ctx context.Context, p *tea.Program, c *client.Client, log *slog.Logger) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	h, err := c.Health(ctx)
	if err != nil {
		log.Warn("backend unreachable", "url", c.BaseURL, "err", err)
		p.Send(msg.Notice{Level: msg.LevelWarning, Text: "backend unreachable: " + err.Error()})
		return
	}
	log.Info("backend", "url", c.BaseURL, "status", h.Status, "version", h.Version)
}

// openLog returns a text logger writing to path, or a discarding one when
// the file cannot be opened. The terminal belongs to the UI.
func openLog(path string, debug bool) (*slog.Logger, func()) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	var w io.Writer = io.Discard
	closer := func() {}
	if path != "" {
		os.MkdirAll(filepath.Dir(path), 0755)
		if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err == nil {
			w = f
			closer = func() { f.Close() }
		}
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closer
}

func backendURL(cfg *config.Config) string {
	if cfg.Backend.URL != "" {
		return cfg.Backend.URL
	}
	return defaultBackend
}

// backendToken prefers the configured token and falls back to the one the
// OSA client leaves in the profile directory.
func backendToken(cfg *config.Config, profileDir string) string {
	if cfg.Backend.Token != "" {
		return cfg.Backend.Token
	}
	if data, err := os.ReadFile(filepath.Join(profileDir, "token")); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
