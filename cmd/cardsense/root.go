package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	cardsense "github.com/cardsense/cardsense"
	"github.com/cardsense/cardsense/internal/client"
	"github.com/cardsense/cardsense/internal/config"
	"github.com/cardsense/cardsense/internal/logger"
	"github.com/cardsense/cardsense/internal/metrics"
	"github.com/cardsense/cardsense/internal/sessionstore"
	"github.com/cardsense/cardsense/internal/version"
)

// flags that override the environment
type globalFlags struct {
	apiURL   string
	platform string
	logLevel string
	envFile  string
	stats    bool
}

// app is built once per invocation by the root command's PersistentPreRunE
type app struct {
	flags    globalFlags
	cfg      *config.Config
	logger   *slog.Logger
	client   *client.Client
	registry *prometheus.Registry
	loc      *time.Location

	// email of the logged in user, kept in the session file for whoami style output
	email string
	// set by logout so the session file is not written back
	sessionCleared bool
}

func newRootCmd(a *app) *cobra.Command {
	flags := &a.flags

	rootCmd := &cobra.Command{
		Use:   "cardsense",
		Short: "CardSense command line client",
		Long: `cardsense talks to the CardSense backend: track transactions, see which card earns
the most for a purchase and keep an eye on monthly budgets.

Run 'cardsense login' to start a session.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd, flags)
		},
	}

	rootCmd.Version = version.Get().String()

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.apiURL, "api-url", "", "API base URL, overrides API_BASE_URL")
	pf.StringVar(&flags.platform, "platform", "", "platform used to derive the API URL (android, ios, device, web)")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&flags.envFile, "env-file", ".env", "file with environment variables to load")
	pf.BoolVar(&flags.stats, "stats", false, "print request statistics to stderr when done")

	rootCmd.AddCommand(
		newHealthCmd(a),
		newRegisterCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newCategoriesCmd(),
		newCardsCmd(a),
		newTransactionsCmd(a),
		newRecommendCmd(a),
		newBudgetsCmd(a),
		newDashboardCmd(a),
	)

	return rootCmd
}

func (a *app) setup(cmd *cobra.Command, flags *globalFlags) error {
	cfg, err := config.NewConfig(flags.envFile)
	if err != nil {
		return err
	}
	if flags.apiURL != "" {
		cfg.APIBaseURL = flags.apiURL
	}
	if flags.platform != "" {
		if !cardsense.ValidPlatforms[flags.platform] {
			return fmt.Errorf("invalid platform '%s'. Valid platforms: android, ios, device, web", flags.platform)
		}
		cfg.Platform = flags.platform
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	a.cfg = cfg
	a.loc = time.Local
	a.logger = logger.InitLogger(logger.ParseLogLevel(cfg.LogLevel), cfg.Environment)

	a.registry = prometheus.NewRegistry()
	m, err := metrics.NewClientMetrics(a.registry)
	if err != nil {
		return err
	}

	jar, err := client.NewCookieJar()
	if err != nil {
		return err
	}

	baseURL := client.ResolveBaseURL(client.BaseURLOptions{
		Platform:   client.Platform(cfg.Platform),
		Override:   cfg.APIBaseURL,
		Origin:     cfg.WebOrigin,
		DeviceHost: cfg.DeviceHost,
	})

	c, err := client.NewClient(client.Options{
		BaseURL:   baseURL,
		Timeout:   cfg.RequestTimeout,
		Jar:       jar,
		RateLimit: cfg.RateLimit,
		RateBurst: cfg.RateBurst,
		Metrics:   m,
		Logger:    a.logger,
		UserAgent: version.Get().UserAgent(),
	})
	if err != nil {
		return err
	}
	a.client = c

	state, err := sessionstore.Load(cfg.SessionFile)
	if err != nil {
		// a damaged session file only costs a new login
		a.logger.Warn("ignoring session file", slog.String("path", cfg.SessionFile), slog.String("error", err.Error()))
		return nil
	}
	if state.Restore(jar, c.APIURL()) {
		a.email = state.Email
		a.logger.Debug("session restored", slog.String("path", cfg.SessionFile))
	}
	return nil
}

// execute runs the command line and then saves the session. The session is saved when the command
// fails too: a rejected request can still rotate the session and csrftoken cookies.
func execute(ctx context.Context, cmd *cobra.Command, a *app) error {
	err := cmd.ExecuteContext(ctx)
	a.teardown(cmd.ErrOrStderr())
	return err
}

func (a *app) teardown(stderr io.Writer) {
	if a.client == nil {
		return
	}
	if a.flags.stats {
		writeStats(stderr, a.registry)
	}
	if a.sessionCleared {
		return
	}

	state := sessionstore.Capture(a.client.Jar(), a.client.APIURL(), a.email)
	if len(state.Cookies) == 0 {
		return
	}
	if err := state.Save(a.cfg.SessionFile); err != nil {
		a.logger.Warn("could not save session", slog.String("error", err.Error()))
	}
}

// clearSession forgets the stored session, used after logout
func (a *app) clearSession() error {
	a.sessionCleared = true
	a.email = ""
	return sessionstore.Clear(a.cfg.SessionFile)
}

// writeStats prints every sample of the client metrics, one line each
func writeStats(w io.Writer, registry *prometheus.Registry) {
	families, err := registry.Gather()
	if err != nil {
		fmt.Fprintf(w, "could not gather statistics: %v\n", err)
		return
	}

	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			switch {
			case m.GetCounter() != nil:
				lines = append(lines, fmt.Sprintf("%s %g", name, m.GetCounter().GetValue()))
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				lines = append(lines, fmt.Sprintf("%s count=%d sum=%.3fs", name, h.GetSampleCount(), h.GetSampleSum()))
			}
		}
	}
	sort.Strings(lines)
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
}
