package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/yourgamermom/japari-librarian/config"
	"github.com/yourgamermom/japari-librarian/credentials"
	"github.com/yourgamermom/japari-librarian/librarian"
	"github.com/yourgamermom/japari-librarian/pkg/logging"
	"github.com/yourgamermom/japari-librarian/pkg/metrics"
	"github.com/yourgamermom/japari-librarian/reddit"
	"github.com/yourgamermom/japari-librarian/wiki"
)

// Run command flags.
var (
	runOnce     bool
	runInterval time.Duration
)

// RunCmd starts the polling loop.
var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the bot's inbox poll loop",
	Long: `Run the librarian bot.

The bot polls the reddit inbox for unread messages, parses friend mentions
out of each message body, resolves them against the Japari Library wiki, and
replies with a link per resolved page.

Configuration is read from ~/.librarian/config.yaml and LIBRARIAN_*
environment variables. Credentials come from 'librarian auth login' or the
LIBRARIAN_CLIENT_ID, LIBRARIAN_CLIENT_SECRET, LIBRARIAN_USERNAME, and
LIBRARIAN_PASSWORD environment variables.

Examples:
  # Poll forever at the configured interval
  librarian run

  # Poll every minute
  librarian run --interval 1m

  # One poll cycle, then exit
  librarian run --once`,
	RunE: runRun,
}

func init() {
	RunCmd.Flags().BoolVar(&runOnce, "once", false, "Run a single poll cycle and exit")
	RunCmd.Flags().DurationVar(&runInterval, "interval", 0, "Override the configured poll interval")
}

// runRun handles the run command.
func runRun(cmd *cobra.Command, args []string) error {
	// Local .env files are a development convenience; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.NewLogger(&logging.Config{
		Level:       logging.Level(cfg.LogLevel),
		ServiceName: "librarian",
		JSONFormat:  cfg.LogFormat == config.LogFormatJSON,
	})

	store, err := credentials.NewStore()
	if err != nil {
		return fmt.Errorf("initializing credential store: %w", err)
	}

	creds, err := store.GetActiveCredentials()
	if err != nil {
		if err == credentials.ErrNoCredentials {
			return fmt.Errorf("no credentials found, run 'librarian auth login' first")
		}
		return fmt.Errorf("loading credentials: %w", err)
	}

	session := reddit.NewSession(reddit.Credentials{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Username:     creds.Username,
		Password:     creds.Password,
	}, logger, &reddit.SessionOptions{
		TokenURL:  cfg.RedditTokenURL,
		UserAgent: cfg.UserAgent,
	})

	redditClient := reddit.NewClient(session, logger, &reddit.ClientOptions{
		BaseURL: cfg.RedditBaseURL,
	})

	wikiClient := wiki.NewClient(logger, &wiki.ClientOptions{
		Endpoint:  cfg.WikiEndpoint,
		UserAgent: cfg.UserAgent,
	})

	m := metrics.New()

	bot := librarian.New(redditClient, wikiClient, m, logger, librarian.Options{
		User:         cfg.User,
		MessageLimit: cfg.MessageLimit,
		Subreddits:   cfg.Subreddits,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		srv := &http.Server{Addr: cfg.MetricsAddress, Handler: mux}

		go func() {
			logger.Info("metrics endpoint listening", logging.F("address", cfg.MetricsAddress))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics endpoint failed", logging.Err(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if runOnce {
		return bot.Cycle(ctx)
	}

	interval := cfg.PollInterval
	if runInterval > 0 {
		interval = runInterval
	}

	if err := bot.Run(ctx, interval); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
