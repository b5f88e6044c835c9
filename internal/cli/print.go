package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dalemusser/sofischeduler/internal/app/system/scheduleview"
	"github.com/dalemusser/sofischeduler/internal/domain/models"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printUploaded(w io.Writer, run models.ScheduleRun) {
	fmt.Fprintln(w, "Schedule generated")
	if run.ID != "" {
		fmt.Fprintf(w, "  id:             %s\n", run.ID)
	}
	fmt.Fprintf(w, "  total_schedule: %d\n", run.Schedule.TotalSchedule)
	fmt.Fprintf(w, "  total_dosen:    %d\n", run.Schedule.TotalDosen)
}

func printRuns(w io.Writer, f scheduleview.Formatter, runs []models.ScheduleRun) error {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No schedules found")
		return nil
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "#\tID\tCREATED\tSCHEDULES\tDOSEN")
	for i, run := range runs {
		created := "-"
		if run.CreatedAt != "" {
			created = f.FormatDate(run.CreatedAt)
		}
		id := run.ID
		if id == "" {
			id = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\n", i+1, id, created,
			run.Schedule.TotalSchedule, run.Schedule.TotalDosen)
	}
	return tw.Flush()
}

func printRun(w io.Writer, f scheduleview.Formatter, run models.ScheduleRun) error {
	if run.ID != "" {
		fmt.Fprintf(w, "Run %s\n", run.ID)
	}
	groups := f.RowGroups(run.Schedule.Schedule)
	if len(groups) == 0 {
		fmt.Fprintln(w, "No schedules found")
		return nil
	}
	for _, g := range groups {
		fmt.Fprintf(w, "\n%s (%d)\n", g.Date, len(g.Rows))
		tw := newTable(w)
		fmt.Fprintln(tw, "  FIELD\tTITLE\tSTUDENT\tROOM\tPEMBIMBING\tPENGUJI")
		for _, row := range g.Rows {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\t%s\n",
				row.Field, row.ShortTitle, row.StudentID, row.Room, row.Pembimbing, row.Penguji)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func printOverview(w io.Writer, run models.ScheduleRun) error {
	stats := scheduleview.DeriveOverviewStats(run)
	tw := newTable(w)
	fmt.Fprintf(tw, "Total Dosen\t%d\n", stats.TotalDosen)
	fmt.Fprintf(tw, "Total Schedule\t%d\n", stats.TotalSchedule)
	fmt.Fprintf(tw, "Average Dosen\t%s\n", stats.AvgDosenText())
	fmt.Fprintf(tw, "Unique Fields\t%d\n", stats.UniqueFields)
	fmt.Fprintf(tw, "Average per Field\t%s\n", stats.AvgPerFieldText())
	if err := tw.Flush(); err != nil {
		return err
	}

	workload := run.Schedule.Analysis.Workload
	spread := scheduleview.WorkloadSpread(workload)
	if spread.Empty() {
		fmt.Fprintln(w, "\nNo data available")
		return nil
	}
	fmt.Fprintf(w, "\nWorkload: min %d (%s), max %d (%s), mean %s, std dev %s\n",
		spread.Min, spread.MinDosen, spread.Max, spread.MaxDosen, spread.MeanText(), spread.StdDevText())

	tw = newTable(w)
	fmt.Fprintln(tw, "DOSEN\tSIDANG")
	for _, item := range workload {
		fmt.Fprintf(tw, "%s\t%s\n", item.DosenID, strconv.Itoa(item.Count))
	}
	return tw.Flush()
}

func printSheets(w io.Writer, file string, sheets []sheetSummary) error {
	fmt.Fprintln(w, file)
	tw := newTable(w)
	fmt.Fprintln(tw, "  SHEET\tROWS\tHEADER")
	for _, s := range sheets {
		fmt.Fprintf(tw, "  %s\t%d\t%s\n", s.Name, s.Rows, strings.Join(s.Header, ", "))
	}
	return tw.Flush()
}
