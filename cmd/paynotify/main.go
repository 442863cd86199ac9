package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/zombor/paynotify/internal/notify"
	"github.com/zombor/paynotify/internal/patterns"
	"github.com/zombor/paynotify/internal/scanning"
	"github.com/zombor/paynotify/internal/transaction"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	// .env values only fill variables the environment does not already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Failed to load .env", "error", err)
	}

	flags := ff.NewFlagSet("paynotify")
	var (
		port            = flags.IntLong("port", 8080, "HTTP server port")
		dbPath          = flags.StringLong("db", "paynotify.db", "Database file path")
		storagePath     = flags.StringLong("storage", "./captures", "Capture storage directory")
		scannerType     = flags.StringLong("scanner", "gemini", "Recognizer: 'gemini' or 'ollama'")
		geminiKey       = flags.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY)")
		geminiModel     = flags.StringLong("gemini-model", "gemini-2.5-flash", "Google Gemini model name")
		ollamaURL       = flags.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel     = flags.StringLong("ollama-model", "qwen2.5vl", "Ollama vision model name")
		authUser        = flags.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass        = flags.StringLong("auth-pass", "", "Basic auth password (optional)")
		banksFile       = flags.StringLong("banks", "", "YAML file with extra or replacement bank profiles")
		captureInterval = flags.DurationLong("capture-interval", time.Second, "Minimum time between accepted captures (0 disables)")
		webhookURL      = flags.StringLong("webhook-url", "", "URL to POST each transfer message to (optional)")
		timezone        = flags.StringLong("timezone", "Asia/Bangkok", "Zone for timestamps and messages")
		_               = flags.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(flags, os.Args[1:],
		ff.WithEnvVarPrefix("PAYNOTIFY"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(flags))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	loc, err := time.LoadLocation(*timezone)
	if err != nil {
		slog.Error("Invalid timezone", "timezone", *timezone, "error", err)
		os.Exit(1)
	}

	lib := patterns.Default()
	if *banksFile != "" {
		slog.Info("Loading bank profiles...", "file", *banksFile)
		lib, err = patterns.LoadFile(lib, *banksFile)
		if err != nil {
			slog.Error("Failed to load bank profiles", "error", err)
			os.Exit(1)
		}
	}
	codes := make([]string, 0, len(lib.Profiles()))
	for _, p := range lib.Profiles() {
		codes = append(codes, p.Code)
	}
	slog.Info("Bank profiles ready", "banks", strings.Join(codes, ","))

	slog.Info("Initializing database...")
	db, err := notify.NewBoltDB(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var recognizer scanning.Recognizer
	switch *scannerType {
	case "gemini":
		apiKey := *geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			slog.Error("Gemini API key is required. Set --gemini-key or GEMINI_API_KEY")
			os.Exit(1)
		}
		slog.Info("Initializing Gemini recognizer...", "model", *geminiModel)
		recognizer, err = scanning.NewGemini(ctx, apiKey, *geminiModel)
	case "ollama":
		slog.Info("Initializing Ollama recognizer...", "url", *ollamaURL, "model", *ollamaModel)
		recognizer, err = scanning.NewOllama(*ollamaURL, *ollamaModel)
	default:
		slog.Error("Invalid scanner type", "type", *scannerType, "valid", "gemini or ollama")
		os.Exit(1)
	}
	if err != nil {
		slog.Error("Failed to initialize recognizer", "scanner", *scannerType, "error", err)
		os.Exit(1)
	}
	defer recognizer.Close()

	slog.Info("Initializing storage...")
	store, err := notify.NewLocalStorage(*storagePath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	notifiers := notify.Notifiers{notify.NewLogNotifier(slog.Default())}
	if *webhookURL != "" {
		slog.Info("Webhook delivery enabled", "url", *webhookURL)
		notifiers = append(notifiers, notify.NewWebhookNotifier(*webhookURL))
	}

	service := notify.NewService(db, store, recognizer,
		transaction.NewAssembler(lib, transaction.WithLocation(loc)),
		notifiers,
		notify.WithCaptureInterval(*captureInterval),
		notify.WithLocation(loc),
	)

	server := notify.NewServer(service, notify.BasicAuth{Username: *authUser, Password: *authPass}, version)

	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr), "version", version)
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	<-ctx.Done()
	slog.Info("Shutting down...")
}
