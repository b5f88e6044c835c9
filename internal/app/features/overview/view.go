// internal/app/features/overview/view.go
package overview

import (
	"github.com/dalemusser/sofischeduler/internal/app/system/barchart"
	"github.com/dalemusser/sofischeduler/internal/app/system/scheduleview"
	"github.com/dalemusser/sofischeduler/internal/app/system/viewdata"
	"github.com/dalemusser/sofischeduler/internal/domain/models"
)

const (
	// EmptyMessage replaces the cards when the backend has no runs.
	EmptyMessage = "Data not available"
	// NoChartData replaces the chart when the workload is empty.
	NoChartData = "No data available"
)

// ChartData feeds the overview_chart snippet.
type ChartData struct {
	Chart barchart.Chart
	Error string
	Empty bool
}

// Content is the part of the overview page that depends on the loaded run.
type Content struct {
	Error string
	Empty bool

	RunID  string
	Stats  scheduleview.OverviewStats
	Spread scheduleview.Spread
	Chart  ChartData
}

type overviewData struct {
	viewdata.BaseVM
	Content
}

func buildContent(run models.ScheduleRun, ok bool, err error) Content {
	if err != nil {
		return Content{Error: err.Error()}
	}
	if !ok {
		return Content{Empty: true}
	}
	return Content{
		RunID:  run.ID,
		Stats:  scheduleview.DeriveOverviewStats(run),
		Spread: scheduleview.WorkloadSpread(run.Schedule.Analysis.Workload),
		Chart:  buildChart(run, ok, nil),
	}
}

// buildChart lays out one bar per faculty member in backend order.
func buildChart(run models.ScheduleRun, ok bool, err error) ChartData {
	if err != nil {
		return ChartData{Chart: barchart.Build(nil, nil, barchart.Options{}), Error: err.Error()}
	}
	w := run.Schedule.Analysis.Workload
	c := ChartData{Chart: barchart.Build(w.Labels(), w.Values(), barchart.Options{})}
	c.Empty = !ok || c.Chart.Empty()
	return c
}
