package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/BTreeMap/CampaignPilot/internal/campaign"
	"github.com/BTreeMap/CampaignPilot/internal/flow"
	"github.com/BTreeMap/CampaignPilot/internal/genai"
	"github.com/BTreeMap/CampaignPilot/internal/metrics"
	"github.com/BTreeMap/CampaignPilot/internal/session"
	"github.com/BTreeMap/CampaignPilot/internal/store"
	"github.com/BTreeMap/CampaignPilot/internal/util"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

// Default configuration constants
const (
	// DefaultStateDir is where debug records are written when debug mode is on
	DefaultStateDir = "/var/lib/campaignpilot"
	// DefaultHistoryLimit bounds the history handed to each turn; 0 means all
	DefaultHistoryLimit = 0
)

// REPL commands
const (
	feedbackCommand = "/feedback "
	historyCommand  = "/history"
	quitCommand     = "/quit"
)

func main() {
	// Load environment configuration
	config := loadEnvironmentConfig()

	// Initialize structured logger
	initializeLogger(config.Debug)

	// Parse command line flags
	flags := parseCommandLineFlags(config)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	svc, err := buildService(ctx, flags, reg)
	if err != nil {
		slog.Error("Failed to build CampaignPilot", "error", err)
		os.Exit(1)
	}

	if *flags.metricsAddr != "" {
		srv := startMetricsServer(*flags.metricsAddr, reg)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	slog.Info("CampaignPilot ready", "provider", *flags.provider, "campaign_id", *flags.campaignID)
	if err := runREPL(ctx, svc, os.Stdin, os.Stdout); err != nil {
		slog.Error("CampaignPilot failed", "error", err)
		os.Exit(1)
	}
	slog.Info("CampaignPilot exited successfully")
}

// Config holds environment configuration
type Config struct {
	Provider         string
	OpenAIKey        string
	OpenAIModel      string
	GoogleKey        string
	GeminiModel      string
	RateLimit        float64
	CampaignDataFile string
	CampaignID       string
	WikipediaEnabled bool
	Debug            bool
	StateDir         string
	HistoryLimit     int
	MetricsAddr      string
}

// Flags holds command line flag values
type Flags struct {
	provider     *string
	openaiKey    *string
	openaiModel  *string
	googleKey    *string
	geminiModel  *string
	rateLimit    *float64
	dataFile     *string
	campaignID   *string
	wikipedia    *bool
	debug        *bool
	stateDir     *string
	historyLimit *int
	metricsAddr  *string
}

// initializeLogger sets up structured logging; debug level when requested
func initializeLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
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
		Provider:         os.Getenv("GENAI_PROVIDER"),
		OpenAIKey:        os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:      os.Getenv("OPENAI_MODEL"),
		GoogleKey:        os.Getenv("GOOGLE_API_KEY"),
		GeminiModel:      os.Getenv("GEMINI_MODEL"),
		RateLimit:        util.ParseFloatEnv("GENAI_RATE_LIMIT", 0),
		CampaignDataFile: os.Getenv("CAMPAIGN_DATA_FILE"),
		CampaignID:       os.Getenv("CAMPAIGN_ID"),
		WikipediaEnabled: util.ParseBoolEnv("WIKIPEDIA_ENABLED", true),
		Debug:            util.ParseBoolEnv("CAMPAIGNPILOT_DEBUG", false),
		StateDir:         os.Getenv("CAMPAIGNPILOT_STATE_DIR"),
		HistoryLimit:     util.ParseIntEnv("HISTORY_LIMIT", DefaultHistoryLimit),
		MetricsAddr:      os.Getenv("METRICS_ADDR"),
	}

	if config.Provider == "" {
		config.Provider = genai.ProviderOpenAI
	}
	if config.CampaignID == "" {
		config.CampaignID = campaign.DefaultCampaignID
	}
	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No CAMPAIGNPILOT_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	}

	slog.Debug("environment variables loaded",
		"GENAI_PROVIDER", config.Provider,
		"OPENAI_API_KEY_SET", config.OpenAIKey != "",
		"GOOGLE_API_KEY_SET", config.GoogleKey != "",
		"GENAI_RATE_LIMIT", config.RateLimit,
		"CAMPAIGN_DATA_FILE", config.CampaignDataFile,
		"CAMPAIGN_ID", config.CampaignID,
		"WIKIPEDIA_ENABLED", config.WikipediaEnabled,
		"HISTORY_LIMIT", config.HistoryLimit)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		provider:     flag.String("provider", config.Provider, "text generation provider: openai or gemini (overrides $GENAI_PROVIDER)"),
		openaiKey:    flag.String("openai-api-key", config.OpenAIKey, "OpenAI API key (overrides $OPENAI_API_KEY)"),
		openaiModel:  flag.String("openai-model", config.OpenAIModel, "OpenAI model (overrides $OPENAI_MODEL)"),
		googleKey:    flag.String("google-api-key", config.GoogleKey, "Gemini API key (overrides $GOOGLE_API_KEY)"),
		geminiModel:  flag.String("gemini-model", config.GeminiModel, "Gemini model (overrides $GEMINI_MODEL)"),
		rateLimit:    flag.Float64("rate-limit", config.RateLimit, "max generation requests per second, 0 for unlimited (overrides $GENAI_RATE_LIMIT)"),
		dataFile:     flag.String("campaign-data", config.CampaignDataFile, "campaign data file, .json or .yaml (overrides $CAMPAIGN_DATA_FILE)"),
		campaignID:   flag.String("campaign-id", config.CampaignID, "campaign to analyze (overrides $CAMPAIGN_ID)"),
		wikipedia:    flag.Bool("wikipedia", config.WikipediaEnabled, "enrich campaigns with Wikipedia background (overrides $WIKIPEDIA_ENABLED)"),
		debug:        flag.Bool("debug", config.Debug, "write generation debug records (overrides $CAMPAIGNPILOT_DEBUG)"),
		stateDir:     flag.String("state-dir", config.StateDir, "state directory for debug records (overrides $CAMPAIGNPILOT_STATE_DIR)"),
		historyLimit: flag.Int("history-limit", config.HistoryLimit, "messages of history passed to each turn, 0 for all (overrides $HISTORY_LIMIT)"),
		metricsAddr:  flag.String("metrics-addr", config.MetricsAddr, "address for the Prometheus metrics endpoint (overrides $METRICS_ADDR)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"provider", *flags.provider,
		"openaiKeySet", *flags.openaiKey != "",
		"googleKeySet", *flags.googleKey != "",
		"rateLimit", *flags.rateLimit,
		"dataFile", *flags.dataFile,
		"campaignID", *flags.campaignID,
		"wikipedia", *flags.wikipedia,
		"debug", *flags.debug,
		"historyLimit", *flags.historyLimit,
		"metricsAddr", *flags.metricsAddr)

	return flags
}

// buildGenAIOptions constructs GenAI configuration options for the selected provider
func buildGenAIOptions(flags Flags) []genai.Option {
	var genaiOpts []genai.Option
	switch strings.ToLower(*flags.provider) {
	case genai.ProviderGemini:
		if *flags.googleKey != "" {
			genaiOpts = append(genaiOpts, genai.WithAPIKey(*flags.googleKey))
		}
		if *flags.geminiModel != "" {
			genaiOpts = append(genaiOpts, genai.WithModel(*flags.geminiModel))
		}
	default:
		if *flags.openaiKey != "" {
			genaiOpts = append(genaiOpts, genai.WithAPIKey(*flags.openaiKey))
		}
		if *flags.openaiModel != "" {
			genaiOpts = append(genaiOpts, genai.WithModel(*flags.openaiModel))
		}
	}
	if *flags.rateLimit > 0 {
		genaiOpts = append(genaiOpts, genai.WithRateLimit(*flags.rateLimit))
	}
	if *flags.debug {
		genaiOpts = append(genaiOpts, genai.WithDebugMode(true, *flags.stateDir))
	}
	return genaiOpts
}

// buildGathererOptions constructs campaign gatherer options
func buildGathererOptions(flags Flags) []campaign.GathererOption {
	opts := []campaign.GathererOption{campaign.WithCampaignID(*flags.campaignID)}
	if *flags.wikipedia {
		opts = append(opts, campaign.WithBackgroundLookup(campaign.NewWikipediaClient()))
	}
	return opts
}

// loadCatalog reads the configured campaign file or falls back to the embedded sample
func loadCatalog(flags Flags) (*campaign.Catalog, error) {
	if *flags.dataFile == "" {
		slog.Debug("No campaign data file set, using embedded sample")
		return campaign.DefaultCatalog()
	}
	return campaign.LoadCatalog(*flags.dataFile)
}

// buildService wires the capabilities into the session service
func buildService(ctx context.Context, flags Flags, reg prometheus.Registerer) (*session.Service, error) {
	gen, err := genai.NewGenerator(ctx, *flags.provider, buildGenAIOptions(flags)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create generator: %w", err)
	}
	catalog, err := loadCatalog(flags)
	if err != nil {
		return nil, err
	}
	recorder, err := metrics.NewRecorder(reg)
	if err != nil {
		return nil, err
	}

	orch := flow.NewOrchestrator(flow.Capabilities{
		Classifier:  flow.NewIntentClassifier(gen),
		DataSource:  campaign.NewGatherer(catalog, buildGathererOptions(flags)...),
		Analyzer:    campaign.NewAnalyzer(gen),
		Recommender: campaign.NewRecommender(gen),
		Summarizer:  campaign.NewSummarizer(gen),
	}, flow.WithMetrics(recorder))

	return session.NewService(store.NewConversationStore(), orch, session.WithHistoryLimit(*flags.historyLimit)), nil
}

func startMetricsServer(addr string, g prometheus.Gatherer) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(g))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		slog.Info("Metrics server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server failed", "error", err)
		}
	}()
	return srv
}

// runREPL reads one message per line until EOF, a DONE reply or /quit.
func runREPL(ctx context.Context, svc *session.Service, in io.Reader, out io.Writer) error {
	sessionID, err := svc.StartSession()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Session %s started. Type /feedback <text> to refine, /history to review, /quit to exit.\n", sessionID)

	scanner := bufio.NewScanner(in)
	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == quitCommand:
			return nil
		case line == historyCommand:
			for _, e := range svc.GetHistory(sessionID) {
				fmt.Fprintf(out, "[%s] %s: %s\n", e.Timestamp, e.Type, e.Content)
			}
			continue
		case strings.HasPrefix(line, feedbackCommand):
			resp := svc.ProcessFeedback(ctx, sessionID, strings.TrimSpace(strings.TrimPrefix(line, feedbackCommand)))
			fmt.Fprintln(out, session.String(resp))
			continue
		}

		resp := svc.ProcessTurn(ctx, sessionID, line)
		fmt.Fprintln(out, session.String(resp))
		if resp.IsDone {
			return nil
		}
	}
}
