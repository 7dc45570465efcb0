package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/uelocate/pkg/config"
	"github.com/ccollicutt/uelocate/pkg/locator"
	"github.com/ccollicutt/uelocate/pkg/metrics"
	"github.com/ccollicutt/uelocate/pkg/output"
	"github.com/ccollicutt/uelocate/pkg/source"
	"github.com/ccollicutt/uelocate/pkg/webhook"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// LocateOptions holds command-line options for the locate command.
type LocateOptions struct {
	IMSI          string
	IMEI          string
	All           bool
	TrackMovement bool

	Export     bool
	ExportFile string

	ConfigFile string
	Container  string
	LogFiles   []string
	Stdin      bool

	Output      string
	Verbose     bool
	Quiet       bool
	MetricsFile string

	// Webhook options
	WebhookURL     string
	WebhookToken   string
	WebhookTrigger string
}

// NewLocateCommand creates the locate command.
func NewLocateCommand() *cobra.Command {
	opts := &LocateOptions{}

	cmd := &cobra.Command{
		Use:   "locate",
		Short: "Locate a UE from AMF logs",
		Long: `Locate a subscriber (UE) and reconstruct its movement from AMF logs.

Select exactly one target:
  --imsi    Look up by subscriber identity
  --imei    Look up by equipment identity
  --all     Every subscriber in the AMF UE table

Add --track-movement for the movement history instead of (or, with --imei,
together with) the current location.

Logs are read from the AMF container by default (docker logs), or from
--log-file patterns, --stdin, or the source in --config.

Exit codes:
  0 - Location or movement found
  1 - Nothing found for the target
  2 - Configuration or runtime error`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLocate(cmd, args, opts)
		},
	}

	// Target flags
	cmd.Flags().StringVar(&opts.IMSI, "imsi", "", "Subscriber identity (14-15 digits)")
	cmd.Flags().StringVar(&opts.IMEI, "imei", "", "Equipment identity (15 digits, or 16 for IMEISV)")
	cmd.Flags().BoolVar(&opts.All, "all", false, "Locate every subscriber in the UE table")
	cmd.Flags().BoolVarP(&opts.TrackMovement, "track-movement", "t", false, "Report movement history")
	cmd.MarkFlagsMutuallyExclusive("imsi", "imei", "all")
	cmd.MarkFlagsOneRequired("imsi", "imei", "all")

	// Export flags
	cmd.Flags().BoolVar(&opts.Export, "export", false, "Export the result to a file")
	cmd.Flags().StringVar(&opts.ExportFile, "export-file", "", "Export file name (.json, .yaml or .yml; implies --export)")

	// Source flags
	cmd.Flags().StringVarP(&opts.ConfigFile, "config", "c", "", "Configuration file")
	cmd.Flags().StringVar(&opts.Container, "container", "", "AMF container name")
	cmd.Flags().StringArrayVarP(&opts.LogFiles, "log-file", "f", nil, "Log file or glob (can be repeated)")
	cmd.Flags().BoolVar(&opts.Stdin, "stdin", false, "Read logs from standard input")
	cmd.MarkFlagsMutuallyExclusive("container", "log-file", "stdin")

	// Output flags
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json|yaml)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show every event, run metadata and debug logs")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no details")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile")

	// Webhook flags
	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook endpoint URL")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")
	cmd.Flags().StringVar(&opts.WebhookTrigger, "webhook-trigger", "on_found", "When to fire webhook (on_found|always|never)")

	return cmd
}

func runLocate(cmd *cobra.Command, _ []string, opts *LocateOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	ExitCode = 0

	query := locator.Query{
		IMSI:          opts.IMSI,
		IMEI:          opts.IMEI,
		All:           opts.All,
		TrackMovement: opts.TrackMovement,
	}
	if err := query.Validate(); err != nil {
		return err
	}

	cfg, err := loadConfig(ctx, opts.ConfigFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if opts.WebhookURL != "" {
		if err := config.ValidateTrigger(config.WebhookTrigger(opts.WebhookTrigger)); err != nil {
			return fmt.Errorf("webhook-trigger: %w", err)
		}
	}

	formatter, err := createFormatter(opts)
	if err != nil {
		return err
	}

	logger, err := newLogger(cmd.ErrOrStderr(), cfg.LogLevel, opts.Verbose)
	if err != nil {
		return err
	}

	src, err := createSource(cfg, opts, cmd.InOrStdin())
	if err != nil {
		return err
	}

	text, err := src.Fetch(ctx)
	if err != nil {
		if !errors.Is(err, source.ErrUnavailable) {
			return fmt.Errorf("fetching logs: %w", err)
		}
		// The resolver reports an empty snapshot as not found or as an
		// empty history.
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
		text = ""
	}
	logger.Debug("fetched logs", "source", src.Name(), "bytes", len(text))

	resolver := locator.NewResolver(
		locator.WithLogger(logger),
		locator.WithTimestampExtractor(cfg.TimestampExtractor()),
		locator.WithContextWindow(cfg.Extraction.ContextWindow),
		locator.WithEquipmentProximity(cfg.Extraction.EquipmentProximity),
		locator.WithWorkers(cfg.Extraction.Workers),
	)

	res, lookupErr := resolver.Locate(ctx, text, query)
	duration := time.Since(start)

	if opts.MetricsFile != "" {
		writeMetrics(cmd.ErrOrStderr(), opts.MetricsFile, query.Operation(), res, lookupErr, len(text), duration)
	}

	if lookupErr != nil {
		if !errors.Is(lookupErr, locator.ErrNotFound) {
			return fmt.Errorf("locating: %w", lookupErr)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Not found: %v\n", lookupErr)
		res = &locator.Result{Kind: query.Kind()}
	}

	meta := output.NewMetadata(query.Operation(), src.Name(), text)
	meta.ConfigFile = opts.ConfigFile
	meta.GeneratedAt = time.Now()
	meta.Duration = duration
	report := output.NewReport(res, meta)

	if err := formatter.Format(ctx, report, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	if (opts.Export || opts.ExportFile != "") && report.Found() {
		path, err := output.ExportFile(opts.ExportFile, res.Payload(), meta.GeneratedAt)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported to %s\n", path)
	}

	// Webhook failures are reported but never change the exit code.
	sendWebhooks(ctx, cmd.ErrOrStderr(), cfg, opts, report)

	if !report.Found() {
		ExitCode = 1
	}

	return nil
}

// loadConfig loads path, or the defaults with environment overrides when
// no file is given.
func loadConfig(ctx context.Context, path string) (*config.Config, error) {
	if path == "" {
		return config.FromEnvironment()
	}
	return config.Load(ctx, path)
}

// createSource picks the log source: command-line flags win over the
// config file.
func createSource(cfg *config.Config, opts *LocateOptions, stdin io.Reader) (source.Source, error) {
	switch {
	case opts.Stdin:
		return source.NewReaderSource("stdin", stdin), nil
	case len(opts.LogFiles) > 0:
		return source.NewFileSource(opts.LogFiles)
	case opts.Container != "":
		return source.NewContainerSource(opts.Container), nil
	}

	switch cfg.Source.Type {
	case config.SourceTypeFiles:
		return source.NewFileSource(cfg.Source.Files)
	case config.SourceTypeCommand:
		return source.NewCommandSource(cfg.Source.Command[0], cfg.Source.Command[1:]...), nil
	default:
		return source.NewContainerSource(cfg.Source.Container), nil
	}
}

func createFormatter(opts *LocateOptions) (output.Formatter, error) {
	return output.NewFormatter(opts.Output, output.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
	})
}

// newLogger returns a text logger on w. Verbose forces debug level.
func newLogger(w io.Writer, level string, verbose bool) (*slog.Logger, error) {
	lvl, err := config.ParseLogLevel(level)
	if err != nil {
		return nil, err
	}
	if verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

func writeMetrics(w io.Writer, path, operation string, res *locator.Result, err error, logBytes int, d time.Duration) {
	m, merr := metrics.New()
	if merr != nil {
		fmt.Fprintf(w, "Metrics: failed (%v)\n", merr)
		return
	}
	m.RecordLogSize(logBytes)
	m.RecordLookup(operation, res, err, d)
	if werr := m.WriteTextfile(path); werr != nil {
		fmt.Fprintf(w, "Metrics: failed (%v)\n", werr)
	}
}

// sendWebhooks sends the report to all configured webhooks.
// Errors are logged to w but don't fail the lookup.
func sendWebhooks(ctx context.Context, w io.Writer, cfg *config.Config, opts *LocateOptions, report *output.Report) {
	webhooks := collectWebhooks(cfg, opts)

	if len(webhooks) == 0 {
		return
	}

	client := webhook.NewClient()

	for _, wh := range webhooks {
		if !shouldFireWebhook(wh.Trigger, report.Found()) {
			continue
		}

		resp := client.Send(ctx, report, webhook.SendOptions{
			URL:     wh.URL,
			Token:   wh.Token,
			Timeout: wh.Timeout,
		})

		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		if resp.Success() {
			fmt.Fprintf(w, "Webhook %s: sent (%d, %s)\n", name, resp.StatusCode, resp.Duration)
		} else {
			fmt.Fprintf(w, "Webhook %s: failed (%v)\n", name, resp.Error)
		}
	}
}

// collectWebhooks merges config file webhooks with CLI webhook.
func collectWebhooks(cfg *config.Config, opts *LocateOptions) []config.WebhookConfig {
	webhooks := make([]config.WebhookConfig, 0, len(cfg.Webhooks)+1)

	webhooks = append(webhooks, cfg.Webhooks...)

	if opts.WebhookURL != "" {
		trigger := config.WebhookTrigger(opts.WebhookTrigger)
		if trigger == "" {
			trigger = config.WebhookTriggerOnFound
		}

		webhooks = append(webhooks, config.WebhookConfig{
			Name:    "cli",
			URL:     opts.WebhookURL,
			Token:   opts.WebhookToken,
			Trigger: trigger,
			Timeout: config.DefaultWebhookTimeout,
		})
	}

	return webhooks
}

// shouldFireWebhook determines if a webhook should fire based on trigger and result.
func shouldFireWebhook(trigger config.WebhookTrigger, found bool) bool {
	switch trigger {
	case config.WebhookTriggerAlways:
		return true
	case config.WebhookTriggerNever:
		return false
	default:
		return found
	}
}
