// Package cli implements sofictl, a terminal client for the scheduling
// backend.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dalemusser/sofischeduler/internal/app/system/scheduleapi"
	"github.com/dalemusser/sofischeduler/internal/app/system/scheduleview"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// APIURLEnv overrides the default backend URL.
const APIURLEnv = "SOFI_API_URL"

// DefaultTimeout bounds a single command, upload included.
const DefaultTimeout = 3 * time.Minute

type options struct {
	apiURL   string
	timeout  time.Duration
	timezone string
	verbose  bool
}

// NewRootCommand builds the sofictl command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "sofictl",
		Short:         "Inspect and generate thesis defense schedules",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	apiURL := os.Getenv(APIURLEnv)
	if apiURL == "" {
		apiURL = scheduleapi.DefaultBaseURL
	}
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.apiURL, "api-url", apiURL, "scheduling backend base URL (env "+APIURLEnv+")")
	pf.DurationVar(&opts.timeout, "timeout", DefaultTimeout, "overall time limit for the command")
	pf.StringVar(&opts.timezone, "timezone", scheduleview.DefaultTimezone, "IANA time zone used to display dates")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "log backend calls to stderr")

	rootCmd.AddCommand(
		newUploadCmd(opts),
		newSchedulesCmd(opts),
		newScheduleCmd(opts),
		newOverviewCmd(opts),
		newInspectCmd(),
	)
	return rootCmd
}

// Execute runs sofictl with args and returns the process exit code. Errors
// are written to stderr.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

// session is what each command needs to talk to the backend.
type session struct {
	api    *scheduleapi.Client
	format scheduleview.Formatter
	log    *zap.Logger
}

func (o *options) open() (*session, error) {
	loc, err := time.LoadLocation(o.timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid --timezone: %w", err)
	}
	log := zap.NewNop()
	if o.verbose {
		if log, err = zap.NewDevelopment(); err != nil {
			return nil, fmt.Errorf("init logger: %w", err)
		}
	}
	api := scheduleapi.New(scheduleapi.Config{BaseURL: o.apiURL, Logger: log})
	return &session{api: api, format: scheduleview.NewFormatter(loc), log: log}, nil
}

// withTimeout bounds ctx by --timeout. A zero timeout means no limit.
func (o *options) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.timeout)
}
