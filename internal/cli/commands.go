package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dalemusser/sofischeduler/internal/app/system/scheduleapi"
	"github.com/dalemusser/sofischeduler/internal/app/system/scheduleview"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newUploadCmd(opts *options) *cobra.Command {
	var skipCheck bool
	cmd := &cobra.Command{
		Use:   "upload <dosen_file> <jadwal_file>",
		Short: "Upload the faculty and schedule files and generate a new run",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			if !skipCheck {
				for _, path := range args {
					if err := checkUploadFile(path); err != nil {
						return err
					}
				}
			}
			dosen, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open dosen file: %w", err)
			}
			defer dosen.Close()
			jadwal, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("open jadwal file: %w", err)
			}
			defer jadwal.Close()

			ctx, cancel := opts.withTimeout(cmd.Context())
			defer cancel()

			run, err := s.api.UploadFiles(ctx,
				scheduleapi.File{Name: filepath.Base(args[0]), Body: dosen},
				scheduleapi.File{Name: filepath.Base(args[1]), Body: jadwal},
			)
			if err != nil {
				s.log.Debug("upload failed", zap.Error(err))
				return err
			}
			printUploaded(cmd.OutOrStdout(), run)
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipCheck, "skip-check", false, "send workbooks without checking them for data rows")
	return cmd
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>...",
		Short: "Show the sheets, headers and row counts of upload workbooks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				if !isWorkbook(path) {
					return fmt.Errorf("%s: not an Excel workbook", filepath.Base(path))
				}
				sheets, err := inspectWorkbook(path)
				if err != nil {
					return err
				}
				if err := printSheets(cmd.OutOrStdout(), filepath.Base(path), sheets); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newSchedulesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "schedules",
		Short: "List generation runs, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			ctx, cancel := opts.withTimeout(cmd.Context())
			defer cancel()

			runs, err := s.api.GetSchedules(ctx)
			if err != nil {
				return err
			}
			return printRuns(cmd.OutOrStdout(), s.format, runs)
		},
	}
}

func newScheduleCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule <id>",
		Short: "Show one run's defenses grouped by date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			ctx, cancel := opts.withTimeout(cmd.Context())
			defer cancel()

			run, err := s.api.GetScheduleByID(ctx, args[0])
			if err != nil {
				return err
			}
			return printRun(cmd.OutOrStdout(), s.format, run)
		},
	}
}

func newOverviewCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Show statistics and faculty workload for the latest run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			ctx, cancel := opts.withTimeout(cmd.Context())
			defer cancel()

			runs, err := s.api.GetSchedules(ctx)
			if err != nil {
				return err
			}
			run, ok := scheduleview.SelectLatest(runs)
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "No data available")
				return nil
			}
			return printOverview(cmd.OutOrStdout(), run)
		},
	}
}
