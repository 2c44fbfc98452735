package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/CrestlineDigital/leadflow/internal/analytics"
	"github.com/CrestlineDigital/leadflow/internal/api"
	"github.com/CrestlineDigital/leadflow/internal/knowledge"
	"github.com/CrestlineDigital/leadflow/internal/leads"
	"github.com/CrestlineDigital/leadflow/internal/match"
	"github.com/CrestlineDigital/leadflow/internal/notify"
	"github.com/CrestlineDigital/leadflow/internal/score"
	"github.com/CrestlineDigital/leadflow/internal/session"
	"github.com/CrestlineDigital/leadflow/internal/store"
	"github.com/CrestlineDigital/leadflow/internal/util"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for leadflow state data
	DefaultStateDir = "/var/lib/leadflow"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "leadflow.db"
)

func main() {
	// Initialize structured logger
	initializeLogger()

	// Load environment configuration
	config := loadEnvironmentConfig()

	// Parse command line flags
	flags := parseCommandLineFlags(config)

	st, err := buildStore(flags)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	if err := seedKnowledgeEntries(st); err != nil {
		slog.Error("Failed to seed knowledge corpus", "error", err)
		os.Exit(1)
	}

	collector := analytics.MultiCollector{analytics.SlogCollector{}, analytics.PromCollector{}}
	notifier := buildNotifier(flags)
	scorer := score.NewScorer(*flags.highValueThreshold)
	matchCfg := match.DefaultConfig()
	matchCfg.Threshold = *flags.matchThreshold
	matcher := match.NewEngine(matchCfg)
	corpus := knowledge.NewStoreCorpus(st)
	leadSvc := leads.NewService(st, scorer, notifier, collector)

	newSession := func() *session.Orchestrator {
		return session.NewOrchestrator(leadSvc,
			session.WithMatcher(matcher),
			session.WithCorpus(corpus),
			session.WithCollector(collector),
		)
	}

	apiOpts := buildAPIOptions(flags)
	server := api.NewServer(newSession, leadSvc, collector, apiOpts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("Bootstrapping leadflow", "api_addr", *flags.apiAddr, "dsn_set", *flags.dbDSN != "")
	if err := server.Run(ctx); err != nil {
		slog.Error("leadflow failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("leadflow exited successfully")
}

// Config holds environment configuration
type Config struct {
	DatabaseURL        string
	StateDir           string
	APIAddr            string
	HighValueThreshold int
	MatchThreshold     float64
	TwilioSID          string
	SalesAlertNumber   string
}

// Flags holds command line flag values
type Flags struct {
	stateDir           *string
	dbDSN              *string
	apiAddr            *string
	highValueThreshold *int
	matchThreshold     *float64
	salesAlertNumber   *string
}

// initializeLogger sets up structured logging; debug level is opt-in via
// $LEADFLOW_DEBUG.
func initializeLogger() {
	level := slog.LevelInfo
	if util.ParseBoolEnv("LEADFLOW_DEBUG", false) {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		StateDir:           os.Getenv("LEADFLOW_STATE_DIR"),
		APIAddr:            os.Getenv("API_ADDR"),
		HighValueThreshold: util.ParseIntEnv("HIGH_VALUE_THRESHOLD", score.DefaultHighValueThreshold),
		MatchThreshold:     util.ParseFloatEnv("MATCH_THRESHOLD", match.DefaultConfig().Threshold),
		TwilioSID:          os.Getenv("TWILIO_ACCOUNT_SID"),
		SalesAlertNumber:   os.Getenv("SALES_ALERT_NUMBER"),
	}

	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No LEADFLOW_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	}

	// Without a database URL, fall back to SQLite in the state directory.
	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.DatabaseURL)
	}

	slog.Debug("environment variables loaded",
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"LEADFLOW_STATE_DIR", config.StateDir,
		"API_ADDR", config.APIAddr,
		"HIGH_VALUE_THRESHOLD", config.HighValueThreshold,
		"MATCH_THRESHOLD", config.MatchThreshold,
		"TWILIO_ACCOUNT_SID_SET", config.TwilioSID != "",
		"SALES_ALERT_NUMBER_SET", config.SalesAlertNumber != "")

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		stateDir:           flag.String("state-dir", config.StateDir, "state directory for leadflow data (overrides $LEADFLOW_STATE_DIR)"),
		dbDSN:              flag.String("db-dsn", config.DatabaseURL, "database DSN for the lead store (overrides $DATABASE_URL)"),
		apiAddr:            flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
		highValueThreshold: flag.Int("high-value-threshold", config.HighValueThreshold, "minimum lead score flagged as high value (overrides $HIGH_VALUE_THRESHOLD)"),
		matchThreshold:     flag.Float64("match-threshold", config.MatchThreshold, "minimum query match score before the fallback answer (overrides $MATCH_THRESHOLD)"),
		salesAlertNumber:   flag.String("sales-alert-number", config.SalesAlertNumber, "phone number for high-value lead alerts (overrides $SALES_ALERT_NUMBER)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"stateDir", *flags.stateDir,
		"dbDSN_set", *flags.dbDSN != "",
		"apiAddr", *flags.apiAddr,
		"highValueThreshold", *flags.highValueThreshold,
		"matchThreshold", *flags.matchThreshold,
		"salesAlertNumber_set", *flags.salesAlertNumber != "")

	// Keep the SQLite default in sync when only the state directory moved.
	if *flags.dbDSN == config.DatabaseURL && config.DatabaseURL == filepath.Join(config.StateDir, DefaultDBFileName) && *flags.stateDir != config.StateDir {
		*flags.dbDSN = filepath.Join(*flags.stateDir, DefaultDBFileName)
		slog.Debug("Updated dbDSN based on state directory", "new_state_dir", *flags.stateDir)
	}

	return flags
}

// buildStore selects a storage backend from the DSN.
func buildStore(flags Flags) (store.Store, error) {
	if *flags.dbDSN == "" {
		slog.Debug("No database DSN provided, using in-memory store")
		return store.NewInMemoryStore(), nil
	}
	if store.DetectDSNType(*flags.dbDSN) == "postgres" {
		slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL store")
		return store.NewPostgresStore(store.WithPostgresDSN(*flags.dbDSN))
	}
	slog.Debug("Detected SQLite DSN, configuring SQLite store", "db_path", *flags.dbDSN)
	return store.NewSQLiteStore(store.WithSQLiteDSN(*flags.dbDSN))
}

// seedKnowledgeEntries loads the built-in corpus into an empty store so a
// fresh deployment can answer questions immediately.
func seedKnowledgeEntries(st store.Store) error {
	existing, err := st.GetKnowledgeEntries()
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		slog.Debug("Knowledge corpus already present", "count", len(existing))
		return nil
	}
	for _, entry := range knowledge.DefaultEntries() {
		if err := st.SaveKnowledgeEntry(entry); err != nil {
			return err
		}
	}
	slog.Info("Seeded default knowledge corpus")
	return nil
}

// buildNotifier configures the Twilio notifier, falling back to the no-op
// notifier when credentials are incomplete.
func buildNotifier(flags Flags) notify.Notifier {
	var opts []notify.Option
	if *flags.salesAlertNumber != "" {
		opts = append(opts, notify.WithToNumber(*flags.salesAlertNumber))
	}
	notifier, err := notify.NewTwilioNotifier(opts...)
	if err != nil {
		slog.Warn("Twilio notifier not configured, high-value lead alerts disabled", "error", err)
		return notify.NoopNotifier{}
	}
	return notifier
}

// buildAPIOptions constructs API server configuration options
func buildAPIOptions(flags Flags) []api.Option {
	var apiOpts []api.Option
	if *flags.apiAddr != "" {
		apiOpts = append(apiOpts, api.WithAddr(*flags.apiAddr))
	}
	return apiOpts
}
