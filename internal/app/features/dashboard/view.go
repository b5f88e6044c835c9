// internal/app/features/dashboard/view.go
package dashboard

import (
	"github.com/dalemusser/sofischeduler/internal/app/system/scheduleview"
	"github.com/dalemusser/sofischeduler/internal/app/system/viewdata"
	"github.com/dalemusser/sofischeduler/internal/domain/models"
)

type viewMode string

const (
	modeColumn viewMode = "column"
	modeTable  viewMode = "table"
)

// EmptyMessage is shown when there is nothing to list.
const EmptyMessage = "No schedules available"

// parseMode maps the view query parameter; anything unknown is column.
func parseMode(v string) viewMode {
	if viewMode(v) == modeTable {
		return modeTable
	}
	return modeColumn
}

// Content is the part of the page that depends on the loaded run.
type Content struct {
	Mode        viewMode
	IsTable     bool
	ToggleHref  string
	ToggleLabel string

	RunID     string
	CreatedAt string
	Total     int

	Error string
	Empty bool

	// Groups is filled in column mode, Rows in table mode.
	Groups []scheduleview.RowGroup
	Rows   []scheduleview.EntryRow
}

type dashboardData struct {
	viewdata.BaseVM
	Content
}

// buildContent shapes a load result for the template. err wins over the run;
// a missing run or one without entries is the empty state.
func buildContent(f scheduleview.Formatter, mode viewMode, path string, run models.ScheduleRun, ok bool, err error) Content {
	c := Content{
		Mode:        mode,
		IsTable:     mode == modeTable,
		ToggleHref:  path + "?view=table",
		ToggleLabel: "Table view",
	}
	if c.IsTable {
		c.ToggleHref = path + "?view=column"
		c.ToggleLabel = "Column view"
	}

	if err != nil {
		c.Error = err.Error()
		return c
	}
	entries := run.Schedule.Schedule
	if !ok || len(entries) == 0 {
		c.Empty = true
		return c
	}

	c.RunID = run.ID
	c.CreatedAt = run.CreatedAt
	c.Total = len(entries)
	if c.IsTable {
		c.Rows = f.Rows(entries)
	} else {
		c.Groups = f.RowGroups(entries)
	}
	return c
}
