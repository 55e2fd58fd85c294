package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/abrezinsky/revista/internal/app"
	"github.com/abrezinsky/revista/internal/auth"
	"github.com/abrezinsky/revista/internal/browser"
	"github.com/abrezinsky/revista/internal/logger"
	"github.com/abrezinsky/revista/pkg/registry"
	"github.com/abrezinsky/revista/web"
)

// ANSI escape codes
const (
	reset  = "\033[0m"
	yellow = "\033[33m"
	red    = "\033[31m"
	green  = "\033[32m"
	cyan   = "\033[36m"
	bold   = "\033[1m"
)

type serveFlags struct {
	port       int
	dbPath     string
	adminPw    string
	logLevel   string
	schemaPath string
	noKeyboard bool
	noBanner   bool
}

func newServeCmd() *cobra.Command {
	f := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the inspection dashboard and API",
		Example: `  revista serve                            # Port 8080 with revista.db
  revista serve --port 80 --db /data/rv.db  # Production example
  revista serve --schema ./revista.yaml     # Custom essential checks, reloaded on change
  revista serve --adminpw secret123         # Fixed admin password`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), f)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&f.port, "port", 8080, "HTTP server port")
	flags.StringVar(&f.dbPath, "db", "revista.db", "SQLite database path")
	flags.StringVar(&f.adminPw, "adminpw", "", "Admin password (auto-generated if not set)")
	flags.StringVar(&f.logLevel, "loglevel", "info", "Log level: debug, info, warn, error")
	flags.StringVar(&f.schemaPath, "schema", "", "Inspection schema YAML (embedded default if not set)")
	flags.BoolVar(&f.noKeyboard, "nokeyboard", false, "Disable keyboard shortcuts")
	flags.BoolVar(&f.noBanner, "nobanner", false, "Skip the startup banner")

	return cmd
}

func runServe(ctx context.Context, f *serveFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if !f.noBanner {
		showBanner()
	}

	// Setup admin authentication
	password := f.adminPw
	if password == "" {
		password = auth.GeneratePassword()
	}
	adminAuth := auth.New(password)

	appLog := logger.NewWithLevel(logger.ParseLevel(f.logLevel))

	// Registry URL and token are applied from settings before each call
	registryClient := registry.NewHTTPClient("", appLog)

	a, err := app.New(appLog, app.Config{DBPath: f.dbPath, SchemaPath: f.schemaPath},
		registryClient, web.GetTemplatesFS(), web.GetStaticFS(), adminAuth)
	if err != nil {
		return exitError(2, "failed to initialize application: %v", err)
	}
	defer a.Close()

	addr := fmt.Sprintf(":%d", f.port)
	appLog.Info("Admin password", "password", password)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- a.Run(addr)
	}()

	// Wait a moment for server to start
	time.Sleep(100 * time.Millisecond)

	if !f.noKeyboard {
		printKeyboardHelp()
		go listenForKeyboard(browser.DashboardURL(f.port), appLog)
	} else {
		fmt.Printf("\n%sKeyboard shortcuts disabled%s\n\n", yellow, reset)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		appLog.Info("Shutting down")
		return nil
	}
}

// cycleLogLevel cycles through debug -> info -> warn -> error
func cycleLogLevel(appLog *logger.SlogLogger) {
	next := map[string]string{
		"DEBUG": "info",
		"INFO":  "warn",
		"WARN":  "error",
		"ERROR": "debug",
	}[appLog.GetLevel().String()]
	if next == "" {
		next = "info"
	}

	appLog.SetLevel(logger.ParseLevel(next))
	fmt.Printf("%sLog level: %s%s%s\n", green, yellow, next, reset)
}

// toggleHTTPLogging flips request logging and reports the new state
func toggleHTTPLogging(appLog *logger.SlogLogger) {
	if appLog.IsHTTPLoggingEnabled() {
		appLog.DisableHTTPLogging()
		fmt.Printf("%sHTTP logging disabled%s\n", yellow, reset)
		return
	}
	appLog.EnableHTTPLogging()
	fmt.Printf("%sHTTP logging enabled%s\n", green, reset)
}

// openDashboard opens the admin dashboard in the default browser
func openDashboard(adminURL string) {
	fmt.Printf("%sOpening dashboard in browser...%s\n", cyan, reset)
	if err := browser.Open(adminURL); err != nil {
		fmt.Printf("%sError opening browser: %v%s\n", red, err, reset)
	}
}

// printKeyboardHelp displays all available keyboard shortcuts
func printKeyboardHelp() {
	fmt.Printf("\n%s%s  Keyboard Shortcuts:%s\n", bold, green, reset)
	fmt.Printf("    %sa%s      - Open dashboard in browser\n", cyan, reset)
	fmt.Printf("    %sh%s      - Toggle HTTP request logging\n", cyan, reset)
	fmt.Printf("    %sl%s      - Cycle log level (debug, info, warn, error)\n", cyan, reset)
	fmt.Printf("    %sq%s      - Quit server\n", cyan, reset)
	fmt.Printf("    %s?%s      - Show this help\n\n", cyan, reset)
}

// showBanner prints the startup logo
func showBanner() {
	logo := []string{
		` ____            _     _        `,
		`|  _ \ _____   _(_)___| |_ __ _ `,
		`| |_) / _ \ \ / / / __| __/ _' |`,
		`|  _ <  __/\ V /| \__ \ || (_| |`,
		`|_| \_\___| \_/ |_|___/\__\__,_|`,
	}
	fmt.Println()
	for _, line := range logo {
		fmt.Printf("  %s%s%s\n", cyan, line, reset)
	}
	fmt.Printf("  %sRevista vehicular %s%s\n\n", yellow, version, reset)
}
