package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/restkit/apiclient"
	"github.com/s0up4200/restkit/config"
	"github.com/s0up4200/restkit/dummyjson"
	"github.com/s0up4200/restkit/filter"
	"github.com/s0up4200/restkit/metrics"
)

var (
	cfgFile   string
	cfg       *config.Config
	logger    zerolog.Logger
	apiClient *apiclient.Client
	client    *dummyjson.Client
	collector *metrics.Collector
	presets   *filter.Presets

	// Command flags
	logLevel   string
	filterExpr string
	preset     string
	baseURL    string
	maxRetries int
	asJSON     bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "restkit",
	Short: "A resilient client for the DummyJSON API",
	Long: `restkit queries users, products and categories from a DummyJSON compatible
API. Requests that fail with an HTTP error status are retried, responses are
validated against their models and results can be narrowed with filter
expressions.`,
	SilenceUsage:      true,
	PersistentPreRunE: initializeApp,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// Interrupts cancel in-flight requests and retry waits.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	// finalizeApp runs whether or not the command failed
	if ferr := finalizeApp(); ferr != nil && err == nil {
		err = ferr
	}
	if err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "override the configured API base URL")
	rootCmd.PersistentFlags().IntVar(&maxRetries, "retries", -1, "override the configured retry count")
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print results as JSON")
}

// initializeApp loads the configuration and builds the clients
func initializeApp(cmd *cobra.Command, args []string) error {
	if skipInit(cmd) {
		return nil
	}

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if baseURL != "" {
		cfg.API.BaseURL = baseURL
	}
	if cmd.Flags().Changed("retries") {
		cfg.API.MaxRetries = maxRetries
	}

	logger = setupLogger(cfg.Logging)

	collector = metrics.NewCollector()

	opts := []apiclient.Option{
		apiclient.WithLogger(logger),
		apiclient.WithEventSink(collector),
	}
	if cfg.Auth.Token != "" {
		opts = append(opts, apiclient.WithDefaultHeaders(map[string]string{
			apiclient.HeaderAuthorization: "Bearer " + cfg.Auth.Token,
		}))
	}

	apiClient, err = apiclient.NewClient(cfg.ClientConfig(), opts...)
	if err != nil {
		return fmt.Errorf("failed to create API client: %w", err)
	}

	client = dummyjson.New(apiClient, logger)

	presets = filter.NewPresets(nil)
	if err := presets.RegisterAll(cfg.Filter.Presets); err != nil {
		return err
	}

	logger.Debug().
		Str("base_url", cfg.API.BaseURL).
		Int("max_retries", cfg.API.MaxRetries).
		Dur("retry_interval", cfg.API.RetryInterval).
		Strs("presets", presets.Names()).
		Msg("Client initialized")

	return nil
}

// finalizeApp closes the client and exports metrics
func finalizeApp() error {
	if apiClient == nil {
		return nil
	}
	if err := apiClient.Close(); err != nil {
		logger.Warn().Err(err).Msg("Failed to close client")
	}

	if cfg.Metrics.Textfile != "" {
		if err := collector.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
		logger.Debug().Str("path", cfg.Metrics.Textfile).Msg("Metrics written")
	}
	return nil
}

// skipInit reports whether cmd runs without configuration
func skipInit(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "version", "update", "help", "completion":
		return true
	}
	return false
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// No colors when stderr is redirected
	color := cfg.Color && isatty.IsTerminal(os.Stderr.Fd())

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !color,
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// getFilter resolves --filter or --preset. A nil filter means no filtering.
func getFilter() (*filter.Filter, error) {
	// Priority: command line filter > preset
	if filterExpr != "" {
		f, err := filter.Compile(filterExpr)
		if err != nil {
			return nil, fmt.Errorf("invalid filter expression: %w", err)
		}
		return f, nil
	}

	if preset != "" {
		return presets.Lookup(preset)
	}

	return nil, nil
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression")
	cmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")
}
