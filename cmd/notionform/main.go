// Package main is the entry point for the notionform server.
//
// notionform exposes Notion databases as public web forms. Form
// configurations and the submission log are stored as files under the data
// directory and tracked in a local git repository. Configuration is read
// from CLI flags, a .env file, and server_config.json (JWT secret, VAPID
// keys, quotas, rate limits).
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/realsalbednarz/notion-form-sub000/internal/forms"
	"github.com/realsalbednarz/notion-form-sub000/internal/identity"
	"github.com/realsalbednarz/notion-form-sub000/internal/notion"
	"github.com/realsalbednarz/notion-form-sub000/internal/server"
	"github.com/realsalbednarz/notion-form-sub000/internal/server/handlers"
	"github.com/realsalbednarz/notion-form-sub000/internal/server/ipgeo"
	"github.com/realsalbednarz/notion-form-sub000/internal/server/ratelimit"
	"github.com/realsalbednarz/notion-form-sub000/internal/storage"
	"github.com/realsalbednarz/notion-form-sub000/internal/storage/git"
)

func main() {
	if err := mainImpl(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "notionform: %v\n", err)
		os.Exit(1)
	}
}

// errConfigChanged signals that server_config.json was edited on disk and
// the serving stack should be rebuilt.
var errConfigChanged = errors.New("configuration changed")

// options holds the resolved startup settings after flags and .env merge.
type options struct {
	addr        string
	dataDir     string
	baseURL     string
	geoDB       string
	notionToken string
	adminEmail  string
	adminPass   string
}

func mainImpl() error {
	version := flag.Bool("version", false, "Print version and exit")
	httpAddr := flag.String("http", "localhost:8080", "Address to listen on (e.g., localhost:8080, :8080, 0.0.0.0:8080). Use 0.0.0.0:port to listen on all interfaces.")
	dataDir := flag.String("data-dir", "./data", "Data directory")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	baseURL := flag.String("base-url", "http://localhost", "Base URL public form links are built from (e.g., https://forms.example.com)")
	geoDB := flag.String("geo-db", "", "Path to MaxMind MMDB file for IP geolocation (optional)")
	flag.Parse()
	if len(flag.Args()) > 0 {
		return fmt.Errorf("unknown arguments: %v", flag.Args())
	}

	if *version {
		printVersion()
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()
	ll := &slog.LevelVar{}
	ll.Set(slog.LevelInfo)
	// Skip timestamps when running under systemd (it adds its own).
	underSystemd := os.Getenv("JOURNAL_STREAM") != ""
	logger := slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      ll,
		TimeFormat: "15:04:05.000", // Like time.TimeOnly plus milliseconds.
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Drop time when running under systemd.
			if underSystemd && a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			// Drop localhost IPs (not useful in logs).
			if a.Key == "ip" {
				if v := a.Value.String(); v == "127.0.0.1" || v == "::1" {
					return slog.Attr{}
				}
			}
			val := a.Value.Any()
			skip := false
			switch t := val.(type) {
			case string:
				skip = t == ""
			case bool:
				skip = !t
			case uint64:
				skip = t == 0
			case int64:
				skip = t == 0
			case float64:
				skip = t == 0
			case time.Time:
				skip = t.IsZero()
			case time.Duration:
				skip = t == 0
			case nil:
				skip = true
			}
			if skip {
				return slog.Attr{}
			}
			return a
		},
	}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(*dataDir, 0o755); err != nil { //nolint:gosec // G301: 0o755 is intentional for data directories
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	// Run onboarding if no .env file exists and stdin is a TTY
	envPath := filepath.Join(*dataDir, ".env")
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		if isatty.IsTerminal(os.Stdin.Fd()) {
			if err := runOnboarding(*dataDir); err != nil {
				return fmt.Errorf("onboarding failed: %w", err)
			}
		}
	}

	env, err := loadDotEnv(*dataDir)
	if err != nil {
		return err
	}

	// Override with .env file values if not explicitly set via flags
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})

	if !set["http"] {
		if v := env["HTTP"]; v != "" {
			*httpAddr = v
		}
	}
	if !set["log-level"] {
		if v := env["LOG_LEVEL"]; v != "" {
			*logLevel = v
		}
	}
	if !set["base-url"] {
		if v := env["BASE_URL"]; v != "" {
			*baseURL = v
		}
	}
	if !set["geo-db"] {
		if v := env["GEO_DB"]; v != "" {
			*geoDB = v
		}
	}

	// Normalize addr: ":8080" becomes "localhost:8080"
	addr := *httpAddr
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}

	// Append port to base URL if localhost and no port specified
	if u, err := url.Parse(*baseURL); err == nil && u.Port() == "" && u.Hostname() == "localhost" {
		if _, p, err := net.SplitHostPort(addr); err == nil {
			u.Host = net.JoinHostPort(u.Hostname(), p)
			*baseURL = u.String()
		}
	}

	switch *logLevel {
	case "debug":
		ll.Set(slog.LevelDebug)
	case "info":
	case "warn":
		ll.Set(slog.LevelWarn)
	case "error":
		ll.Set(slog.LevelError)
	default:
		return fmt.Errorf("unknown log level: %q", *logLevel)
	}

	// Watch own executable for modifications (for development restarts)
	if err := watchExecutable(ctx, stop); err != nil {
		return fmt.Errorf("failed to watch executable: %w", err)
	}

	opts := &options{
		addr:        addr,
		dataDir:     *dataDir,
		baseURL:     *baseURL,
		geoDB:       *geoDB,
		notionToken: env["NOTION_TOKEN"],
		adminEmail:  env["ADMIN_EMAIL"],
		adminPass:   env["ADMIN_PASSWORD"],
	}
	// Editing server_config.json rebuilds the whole serving stack.
	for {
		err := serve(ctx, opts)
		if errors.Is(err, errConfigChanged) {
			slog.InfoContext(ctx, "Configuration changed, reloading")
			continue
		}
		return err
	}
}

// serve builds all services from the data directory and runs the HTTP server
// until shutdown or a configuration change.
func serve(ctx context.Context, opts *options) error {
	serverCfg, err := storage.LoadServerConfig(opts.dataDir)
	if err != nil {
		return fmt.Errorf("failed to load server_config.json: %w", err)
	}

	repo, err := git.Open(opts.dataDir, "notionform", "notionform@localhost")
	if err != nil {
		return fmt.Errorf("failed to open data repository: %w", err)
	}

	dbDir := filepath.Join(opts.dataDir, "db")
	if err := os.MkdirAll(dbDir, 0o755); err != nil { //nolint:gosec // G301: 0o755 is intentional for data directories
		return fmt.Errorf("failed to create db directory: %w", err)
	}

	userService, err := identity.NewUserService(filepath.Join(dbDir, "users.jsonl"))
	if err != nil {
		return fmt.Errorf("failed to initialize user service: %w", err)
	}

	sessionService, err := identity.NewSessionService(filepath.Join(dbDir, "sessions.jsonl"))
	if err != nil {
		return fmt.Errorf("failed to initialize session service: %w", err)
	}
	// Cleanup old expired sessions (older than 7 days past expiration)
	if count, err := sessionService.CleanupExpired(7 * 24 * time.Hour); err != nil {
		slog.WarnContext(ctx, "Failed to cleanup expired sessions", "error", err)
	} else if count > 0 {
		slog.InfoContext(ctx, "Cleaned up expired sessions", "count", count)
	}

	formService, err := forms.NewFormService(filepath.Join(dbDir, "forms.jsonl"), serverCfg.Quotas.MaxForms)
	if err != nil {
		return fmt.Errorf("failed to initialize form service: %w", err)
	}

	submissionService, err := storage.NewSubmissionService(filepath.Join(dbDir, "submissions.jsonl"))
	if err != nil {
		return fmt.Errorf("failed to initialize submission service: %w", err)
	}

	pushService, err := storage.NewPushSubscriptionService(filepath.Join(dbDir, "push_subscriptions.jsonl"))
	if err != nil {
		return fmt.Errorf("failed to initialize push subscription service: %w", err)
	}

	// The Notion token can live in server_config.json or in .env; the config
	// file wins. Without a token the admin API still works, but database
	// browsing and the public form surface return errors until it is set.
	token := serverCfg.NotionToken
	if token == "" {
		token = opts.notionToken
	}
	var client forms.NotionClient
	var notionService *forms.Service
	if token != "" {
		client = notion.NewClient(token)
		notionService = forms.NewService(client, slog.Default(), serverCfg.Quotas.MaxRowsPerQuery)
	} else {
		slog.WarnContext(ctx, "No Notion token configured, forms cannot reach Notion")
	}

	// Bootstrap the first admin account from .env.
	if userService.Len() == 0 {
		if opts.adminEmail != "" && opts.adminPass != "" {
			if _, err := userService.Create(opts.adminEmail, opts.adminPass, "Admin"); err != nil {
				return fmt.Errorf("failed to create admin account: %w", err)
			}
			slog.InfoContext(ctx, "Created admin account", "email", opts.adminEmail)
		} else {
			slog.WarnContext(ctx, "No admin account exists, set ADMIN_EMAIL and ADMIN_PASSWORD in .env")
		}
	}

	// Open IP geolocation database if configured
	var geoChecker *ipgeo.Checker
	if opts.geoDB != "" {
		geoChecker, err = ipgeo.Open(opts.geoDB)
		if err != nil {
			return fmt.Errorf("failed to open geo database: %w", err)
		}
		defer func() { _ = geoChecker.Close() }()
		slog.InfoContext(ctx, "IP geolocation enabled", "db", opts.geoDB)
	}

	svc := &handlers.Services{
		User:       userService,
		Session:    sessionService,
		Form:       formService,
		Notion:     notionService,
		Client:     client,
		Submission: submissionService,
		Push:       pushService,
		Repo:       repo,
		IPGeo:      geoChecker,
	}
	buildVersion, _, _, _ := getBuildInfo()
	cfg := &handlers.Config{
		JWTSecret: serverCfg.JWTSecret,
		BaseURL:   opts.baseURL,
		Version:   buildVersion,
		Quotas:    serverCfg.Quotas,
		WebPush:   serverCfg.WebPush,
	}
	limiters := ratelimit.NewLimiters(serverCfg.RateLimits)
	defer limiters.Close()

	configChanged, err := watchConfigFile(ctx, filepath.Join(opts.dataDir, "server_config.json"))
	if err != nil {
		return fmt.Errorf("failed to watch config file: %w", err)
	}

	httpServer := &http.Server{
		Addr:              opts.addr,
		Handler:           server.NewRouter(svc, cfg, limiters),
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "Starting server", "addr", opts.addr, "baseURL", opts.baseURL, "version", buildVersion)
		serverErr <- httpServer.ListenAndServe()
	}()

	shutdown := func() error {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-configChanged:
		if err := shutdown(); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return errConfigChanged
	case <-ctx.Done():
		slog.InfoContext(ctx, "Shutting down server")
		if err := shutdown(); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		slog.InfoContext(ctx, "Server stopped")
	}
	return nil
}

func printVersion() {
	version, goVersion, revision, dirty := getBuildInfo()
	fmt.Printf("notionform %s\n", version)
	fmt.Printf("  Go version: %s\n", goVersion)
	fmt.Printf("  Revision:   %s\n", revision)
	if dirty {
		fmt.Printf("  Modified:   true\n")
	}
}

func getBuildInfo() (version, goVersion, revision string, dirty bool) {
	version = "unknown"
	goVersion = "unknown"
	revision = "unknown"
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	version = info.Main.Version
	if version == "" || version == "(devel)" {
		version = "dev"
	}
	goVersion = info.GoVersion
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	return
}

func loadDotEnv(dataDir string) (map[string]string, error) {
	env := make(map[string]string)
	path := filepath.Join(dataDir, ".env")
	envContent, err := os.ReadFile(path) //nolint:gosec // G304: path is constructed from dataDir flag, not user input
	if err != nil {
		if os.IsNotExist(err) {
			return env, nil
		}
		return nil, err
	}

	for line := range strings.SplitSeq(string(envContent), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])

		if strings.HasPrefix(val, "'") || strings.HasSuffix(val, "'") {
			if strings.HasPrefix(val, "'") && strings.HasSuffix(val, "'") {
				return nil, fmt.Errorf("single quotes are not supported for wrapping in .env: %s", line)
			}
			return nil, fmt.Errorf("unbalanced single quotes in .env: %s", line)
		}

		if strings.HasPrefix(val, "\"") {
			unquoted, err := strconv.Unquote(val)
			if err != nil {
				return nil, fmt.Errorf("failed to unquote %s: %w", key, err)
			}
			val = unquoted
		}

		env[key] = val
	}
	return env, nil
}

func saveDotEnv(dataDir string, env map[string]string) error {
	path := filepath.Join(dataDir, ".env")
	var lines []string
	for k, v := range env {
		if v != "" {
			lines = append(lines, fmt.Sprintf("%s=%s", k, v))
		}
	}
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600)
}

func runOnboarding(dataDir string) error {
	fmt.Println("Welcome to notionform! Let's set up your configuration.")
	fmt.Println("")

	reader := bufio.NewReader(os.Stdin)
	env := make(map[string]string)

	prompt := func(label string) (string, error) {
		fmt.Print(label)
		val, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", label, err)
		}
		return strings.TrimSpace(val), nil
	}

	fmt.Println("--- Server Setup ---")
	fmt.Println("The base URL is what public form links are built from.")
	baseURL, err := prompt("Base URL (default: http://localhost): ")
	if err != nil {
		return err
	}
	if baseURL == "" {
		baseURL = "http://localhost"
	}
	env["BASE_URL"] = baseURL

	fmt.Println("\n--- Admin Account ---")
	fmt.Println("The admin account manages forms through the API.")
	if env["ADMIN_EMAIL"], err = prompt("Admin email: "); err != nil {
		return err
	}
	if env["ADMIN_PASSWORD"], err = prompt("Admin password: "); err != nil {
		return err
	}

	fmt.Println("\n--- Notion Integration ---")
	fmt.Println("Create an internal integration at https://www.notion.so/my-integrations")
	fmt.Println("and share the databases you want to expose with it.")
	if env["NOTION_TOKEN"], err = prompt("Notion integration token (optional): "); err != nil {
		return err
	}

	fmt.Println("")
	if err := saveDotEnv(dataDir, env); err != nil {
		return fmt.Errorf("failed to save .env file: %w", err)
	}

	fmt.Printf("Configuration saved to %s/.env\n", dataDir)
	fmt.Println("You can edit this file later to change your settings.")
	fmt.Println("")

	return nil
}

// watchExecutable watches the current executable for modifications and calls
// stop to trigger graceful shutdown when detected. This enables seamless
// restarts during development.
func watchExecutable(ctx context.Context, stop context.CancelFunc) error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(exe); err != nil {
		_ = w.Close()
		return err
	}
	go func() {
		defer func() { _ = w.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Chmod) {
					slog.InfoContext(ctx, "Executable modified, initiating shutdown")
					stop()
					return
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.WarnContext(ctx, "Error watching executable", "err", err)
			}
		}
	}()
	return nil
}

// watchConfigFile watches server_config.json and closes the returned channel
// on the first write, so edits take effect without restarting the process.
func watchConfigFile(ctx context.Context, path string) (<-chan struct{}, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(path); err != nil {
		_ = w.Close()
		return nil, err
	}
	changed := make(chan struct{})
	go func() {
		defer func() { _ = w.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					close(changed)
					return
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.WarnContext(ctx, "Error watching config file", "err", err)
			}
		}
	}()
	return changed, nil
}
