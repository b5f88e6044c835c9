package scheduleview

import (
	"strconv"

	"github.com/dalemusser/sofischeduler/internal/domain/models"
	"gonum.org/v1/gonum/stat"
)

// DataUnavailable replaces the per-field average when there are no fields.
const DataUnavailable = "Data tidak tersedia"

// OverviewStats are the figures on the two overview cards.
type OverviewStats struct {
	TotalDosen    int
	TotalSchedule int
	AvgDosen      float64
	UniqueFields  int

	AvgPerField          float64
	AvgPerFieldAvailable bool
}

// AvgDosenText is AvgDosen with two decimals.
func (s OverviewStats) AvgDosenText() string {
	return strconv.FormatFloat(s.AvgDosen, 'f', 2, 64)
}

// AvgPerFieldText is AvgPerField with two decimals, or DataUnavailable.
func (s OverviewStats) AvgPerFieldText() string {
	if !s.AvgPerFieldAvailable {
		return DataUnavailable
	}
	return strconv.FormatFloat(s.AvgPerField, 'f', 2, 64)
}

// DeriveOverviewStats copies the backend totals and adds the schedules per
// field average, which is unavailable when the run has no fields.
func DeriveOverviewStats(run models.ScheduleRun) OverviewStats {
	d := run.Schedule
	s := OverviewStats{
		TotalDosen:    d.TotalDosen,
		TotalSchedule: d.TotalSchedule,
		AvgDosen:      d.AvgDosen,
		UniqueFields:  d.UniqueFields,
	}
	if d.UniqueFields > 0 {
		s.AvgPerField = float64(d.TotalSchedule) / float64(d.UniqueFields)
		s.AvgPerFieldAvailable = true
	}
	return s
}

// Spread summarises how evenly defenses are spread across faculty.
type Spread struct {
	Dosen  int
	Min    int
	Max    int
	Mean   float64
	StdDev float64
	// MinDosen and MaxDosen are the first faculty ids holding Min and Max.
	MinDosen string
	MaxDosen string
}

// Empty reports whether the workload had no entries.
func (s Spread) Empty() bool { return s.Dosen == 0 }

// MeanText is Mean with two decimals.
func (s Spread) MeanText() string { return strconv.FormatFloat(s.Mean, 'f', 2, 64) }

// StdDevText is StdDev with two decimals.
func (s Spread) StdDevText() string { return strconv.FormatFloat(s.StdDev, 'f', 2, 64) }

// WorkloadSpread computes min, max, mean and sample standard deviation of
// the per-faculty counts.
func WorkloadSpread(w models.Workload) Spread {
	if len(w) == 0 {
		return Spread{}
	}
	values := make([]float64, len(w))
	sp := Spread{
		Dosen:    len(w),
		Min:      w[0].Count,
		Max:      w[0].Count,
		MinDosen: w[0].DosenID,
		MaxDosen: w[0].DosenID,
	}
	for i, it := range w {
		values[i] = float64(it.Count)
		if it.Count < sp.Min {
			sp.Min, sp.MinDosen = it.Count, it.DosenID
		}
		if it.Count > sp.Max {
			sp.Max, sp.MaxDosen = it.Count, it.DosenID
		}
	}
	if len(values) == 1 {
		sp.Mean = values[0]
		return sp
	}
	sp.Mean, sp.StdDev = stat.MeanStdDev(values, nil)
	return sp
}
