// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirseerhq/harness-report/internal/apierror"
	"github.com/sirseerhq/harness-report/internal/collector"
	"github.com/sirseerhq/harness-report/internal/config"
	reporterrors "github.com/sirseerhq/harness-report/internal/errors"
	"github.com/sirseerhq/harness-report/internal/harness"
	"github.com/sirseerhq/harness-report/internal/logger"
	"github.com/sirseerhq/harness-report/internal/metadata"
	"github.com/sirseerhq/harness-report/internal/output"
	"github.com/sirseerhq/harness-report/internal/report"
	"github.com/sirseerhq/harness-report/pkg/version"
	"github.com/spf13/cobra"
)

// fetchOptions holds the flag values of the fetch command. Zero values
// mean "not given" and leave the configured value in place.
type fetchOptions struct {
	authToken string
	apiKey    string
	accountID string
	orgID     string
	projectID string
	exclude   []string

	startDate string
	endDate   string
	startTime int64
	endTime   int64
	// startTimeSet and endTimeSet record whether the epoch flags were given,
	// since 0 is a valid epoch.
	startTimeSet bool
	endTimeSet   bool

	pageSize     int
	outputFile   string
	configPath   string
	envFile      string
	metadataPath string

	logFormat string
	verbose   bool
}

// newFetchCommand creates the fetch command
func newFetchCommand() *cobra.Command {
	var opts fetchOptions

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch Production deployments into a CSV report",
		Long: `Fetch pipeline executions from Harness and write every Production stage to CSV.

Authentication (exactly one):
  - --auth-token or HARNESS_AUTH_TOKEN for a bearer token
  - --api-key or HARNESS_API_KEY for an API key

The time range defaults to 2025-01-01 until now. Dates are UTC days: the
start date begins at 00:00:00 and the end date runs through 23:59:59.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 && cmd.Flags().Changed("exclude-projects") {
				return fmt.Errorf("%w: unexpected arguments %q: separate --exclude-projects values with commas",
					reporterrors.ErrInvalidConfig, args)
			}
			return cobra.NoArgs(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.startTimeSet = cmd.Flags().Changed("start-time")
			opts.endTimeSet = cmd.Flags().Changed("end-time")
			return runFetch(cmd.Context(), opts, cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.authToken, "auth-token", "", "Harness bearer token (overrides HARNESS_AUTH_TOKEN)")
	flags.StringVar(&opts.apiKey, "api-key", "", "Harness API key (overrides HARNESS_API_KEY)")
	flags.StringVar(&opts.accountID, "account-id", "", "Harness account identifier (or HARNESS_ACCOUNT_ID)")
	flags.StringVar(&opts.orgID, "org-id", "", "Harness organization identifier (or HARNESS_ORG_ID)")
	flags.StringVar(&opts.projectID, "project-id", "", "Report on a single project instead of the whole organization")
	flags.StringSliceVar(&opts.exclude, "exclude-projects", nil, "Project identifiers to skip, comma separated (a,b,c) or repeated (--exclude-projects a --exclude-projects b)")

	flags.StringVar(&opts.startDate, "start-date", "", "Start date YYYY-MM-DD (UTC, inclusive)")
	flags.StringVar(&opts.endDate, "end-date", "", "End date YYYY-MM-DD (UTC, inclusive)")
	flags.Int64Var(&opts.startTime, "start-time", 0, "Start time in epoch milliseconds (default 1735689600000, ignored with --start-date)")
	flags.Int64Var(&opts.endTime, "end-time", 0, "End time in epoch milliseconds, inclusive (default now, ignored with --end-date)")

	flags.IntVar(&opts.pageSize, "page-size", 0, "Executions per API page (default 50)")
	flags.StringVar(&opts.outputFile, "output", "", "CSV output path (default pipeline_executions.csv)")
	flags.StringVar(&opts.configPath, "config", "", "Path to a YAML config file")
	flags.StringVar(&opts.envFile, "env-file", "", "Path to a .env file (default .env if present)")
	flags.StringVar(&opts.metadataPath, "metadata", "", "Write run metadata JSON to this path")

	flags.StringVar(&opts.logFormat, "log-format", logger.FormatText, "Log format: text or json")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}

// runFetch executes the fetch command
func runFetch(ctx context.Context, opts fetchOptions, stderr io.Writer) error {
	log, err := logger.New(stderr, opts.logFormat, opts.verbose)
	if err != nil {
		return fmt.Errorf("%w: %w", reporterrors.ErrInvalidConfig, err)
	}

	cfg, err := config.LoadConfig(opts.configPath, opts.envFile)
	if err != nil {
		return fmt.Errorf("%w: %w", reporterrors.ErrInvalidConfig, err)
	}
	applyFlags(cfg, opts)

	creds, err := config.ResolveCredentials(opts.authToken, opts.apiKey, cfg)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	window, err := resolveWindow(opts, time.Now())
	if err != nil {
		return err
	}

	tracker := metadata.New()
	log = log.With("run_id", tracker.RunID())

	rest := harness.NewRESTClient(cfg.Harness.BaseURL, harness.Scope{
		AccountID: cfg.Harness.AccountID,
		OrgID:     cfg.Harness.OrgID,
	}, creds, harness.Options{
		Timeout:  cfg.Retry.RequestTimeout,
		Observer: tracker,
	})
	client := harness.NewRetryClient(rest, &harness.RetryConfig{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BackoffStep: cfg.Retry.BackoffStep,
	}, log)

	col := collector.New(client, collector.OptionsFromConfig(cfg), log)
	col.SetBatchObserver(tracker)

	log.Info("starting report",
		"account", cfg.Harness.AccountID,
		"org", cfg.Harness.OrgID,
		"window", window.String(),
		"output", cfg.Output.Path)

	projects, err := col.Projects(ctx, opts.projectID, cfg.ExcludeProjects)
	if err != nil {
		logRequestFailure(log, "project listing failed", err)
		return err
	}

	writer, err := output.NewFileWriter(cfg.Output.Path, report.Header())
	if err != nil {
		return err
	}
	defer writer.Close()

	transformer := report.Transformer{
		BaseURL:   cfg.Harness.BaseURL,
		AccountID: cfg.Harness.AccountID,
		OrgID:     cfg.Harness.OrgID,
	}

	if err := writeProjects(ctx, col, log, tracker, transformer, projects, window, writer); err != nil {
		return err
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}

	printSummary(stderr, tracker, writer, cfg.Output.Path)

	if cfg.Output.MetadataPath != "" {
		md := tracker.GenerateMetadata(version.Version, metadata.RunParams{
			AccountID:       cfg.Harness.AccountID,
			OrgID:           cfg.Harness.OrgID,
			ProjectID:       opts.projectID,
			ExcludeProjects: cfg.ExcludeProjects,
			StartTime:       time.UnixMilli(window.Start).UTC(),
			EndTime:         time.UnixMilli(window.End).UTC(),
			PageSize:        cfg.Fetch.PageSize,
			OutputPath:      cfg.Output.Path,
		})
		if err := metadata.SaveMetadata(md, cfg.Output.MetadataPath); err != nil {
			return err
		}
		log.Info("saved run metadata", "path", cfg.Output.MetadataPath)
	}

	return nil
}

// writeProjects fetches each project in turn and appends its rows to sink.
// A project that fails is logged, recorded in the tracker and skipped.
func writeProjects(ctx context.Context, col *collector.Collector, log *slog.Logger, tracker *metadata.Tracker,
	transformer report.Transformer, projects []string, window collector.Window, sink output.OutputWriter) error {
	for i, project := range projects {
		if i > 0 {
			if err := col.Pause(ctx); err != nil {
				return err
			}
		}

		log.Info("fetching project", "project", project, "index", i+1, "of", len(projects))

		records, err := fetchProject(ctx, col, project, window)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logRequestFailure(log.With("project", project), "project failed, skipping", err)
			tracker.ProjectFailed(project, err)
			continue
		}

		if err := sink.WriteRows(transformer.Rows(records)); err != nil {
			return fmt.Errorf("failed to write project %s: %w", project, err)
		}
		tracker.ProjectCompleted(project, len(records))
		log.Info("project complete", "project", project, "records", len(records))
	}
	return nil
}

// applyFlags overrides configuration with the flags that were given
func applyFlags(cfg *config.Config, opts fetchOptions) {
	if opts.accountID != "" {
		cfg.Harness.AccountID = opts.accountID
	}
	if opts.orgID != "" {
		cfg.Harness.OrgID = opts.orgID
	}
	if opts.pageSize != 0 {
		cfg.Fetch.PageSize = opts.pageSize
	}
	if opts.outputFile != "" {
		cfg.Output.Path = opts.outputFile
	}
	if opts.metadataPath != "" {
		cfg.Output.MetadataPath = opts.metadataPath
	}
	if len(opts.exclude) > 0 {
		cfg.ExcludeProjects = opts.exclude
	}
}

// fetchProject reads every record of a project. Nothing is returned on
// error so that a failed project contributes no rows.
func fetchProject(ctx context.Context, col *collector.Collector, project string, window collector.Window) ([]harness.Record, error) {
	var records []harness.Record
	for rec, err := range col.ProjectExecutions(ctx, project, window) {
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// logRequestFailure logs err with whatever request detail it carries and,
// for API errors, a curl command that replays the request.
func logRequestFailure(log *slog.Logger, msg string, err error) {
	apiErr, ok := harness.AsAPIError(err)
	if !ok {
		log.Error(msg, "error", err)
		return
	}

	attrs := []any{
		"error", err,
		"method", apiErr.Method,
		"url", apiErr.URL,
		"status", apiErr.Status,
		"response", apiErr.Body,
	}
	if hint := failureHint(err); hint != "" {
		attrs = append(attrs, "hint", hint)
	}
	log.Error(msg, attrs...)
	log.Warn("reproduce the failing request with", "curl", apiErr.Curl())
}

// failureHint suggests what to check for failures the user can fix.
func failureHint(err error) string {
	inspector := apierror.NewInspector()
	switch {
	case inspector.IsAuthError(err):
		return "check that the token or API key is valid and has access to the account"
	case inspector.IsNotFoundError(err):
		return "check the account, organization and project identifiers"
	}
	return ""
}

func printSummary(w io.Writer, tracker *metadata.Tracker, writer *output.Writer, path string) {
	_, completed, failed := tracker.Totals()

	fmt.Fprintf(w, "Wrote %s records from %s projects to %s (%s, %s API calls)\n",
		humanize.Comma(int64(writer.Count())),
		humanize.Comma(int64(completed)),
		path,
		humanize.Bytes(uint64(writer.Size())),
		humanize.Comma(int64(tracker.APICalls())))
	if failed > 0 {
		fmt.Fprintf(w, "%d %s skipped after errors, see the log for details\n", failed, plural(failed, "project", "projects"))
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// mapErrorToExitCode maps internal errors to appropriate exit codes
func mapErrorToExitCode(err error) int {
	if err == nil {
		return 0
	}

	if errors.Is(err, reporterrors.ErrInvalidConfig) {
		return 1
	}

	inspector := apierror.NewInspector()
	if inspector.IsAuthError(err) {
		return 2 // Authentication/authorization errors
	}

	if inspector.IsNetworkError(err) {
		return 3 // Network errors
	}

	return 1 // General error
}

// resolveWindow turns the date and epoch flags into the half-open window
// to report on. Dates win over epoch times.
func resolveWindow(opts fetchOptions, now time.Time) (collector.Window, error) {
	w := collector.Window{
		Start: config.DefaultStartTime,
		End:   now.UnixMilli(),
	}

	if opts.startTimeSet {
		if opts.startTime < 0 {
			return collector.Window{}, fmt.Errorf("%w: --start-time must not be negative, got %d", reporterrors.ErrInvalidConfig, opts.startTime)
		}
		w.Start = opts.startTime
	}
	if opts.endTimeSet {
		if opts.endTime < 0 {
			return collector.Window{}, fmt.Errorf("%w: --end-time must not be negative, got %d", reporterrors.ErrInvalidConfig, opts.endTime)
		}
		w.End = opts.endTime + 1
	}

	if opts.startDate != "" {
		day, err := parseDate(opts.startDate)
		if err != nil {
			return collector.Window{}, fmt.Errorf("%w: invalid --start-date: %w", reporterrors.ErrInvalidConfig, err)
		}
		w.Start = day.UnixMilli()
	}
	if opts.endDate != "" {
		day, err := parseDate(opts.endDate)
		if err != nil {
			return collector.Window{}, fmt.Errorf("%w: invalid --end-date: %w", reporterrors.ErrInvalidConfig, err)
		}
		w.End = day.AddDate(0, 0, 1).UnixMilli()
	}

	if w.Empty() {
		return collector.Window{}, fmt.Errorf("%w: start %s is not before end %s",
			reporterrors.ErrInvalidConfig,
			time.UnixMilli(w.Start).UTC().Format(time.DateTime),
			time.UnixMilli(w.End).UTC().Format(time.DateTime))
	}
	return w, nil
}

// parseDate parses a YYYY-MM-DD date as midnight UTC
func parseDate(s string) (time.Time, error) {
	day, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("expected YYYY-MM-DD, got %q", s)
	}
	return day.UTC(), nil
}
