// internal/app/features/upload/types.go
package upload

import (
	"strconv"
	"time"

	"github.com/dalemusser/sofischeduler/internal/app/system/viewdata"
	"github.com/dalemusser/sofischeduler/internal/domain/models"
)

const (
	dosenField  = "dosen_file"
	jadwalField = "jadwal_file"

	recentLimit = 10
)

// UploadData is the view model for the upload form.
type UploadData struct {
	viewdata.BaseVM

	DosenField  string
	JadwalField string
	MaxMB       string

	Error string

	HistoryEnabled bool
	Recent         []RecentRow
}

// RecentRow is one line of the upload history table.
type RecentRow struct {
	When       string
	DosenFile  string
	JadwalFile string
	Success    bool
	Outcome    string
	RunID      string
}

func recentRows(recs []models.UploadRecord, loc *time.Location) []RecentRow {
	rows := make([]RecentRow, 0, len(recs))
	for _, rec := range recs {
		row := RecentRow{
			When:       rec.CreatedAt.In(loc).Format("2 Jan 2006 15:04"),
			DosenFile:  rec.DosenFile,
			JadwalFile: rec.JadwalFile,
			Success:    rec.Success,
			RunID:      rec.RunID,
		}
		if rec.Success {
			row.Outcome = strconv.Itoa(rec.TotalSchedule) + " jadwal"
		} else {
			row.Outcome = rec.Error
		}
		rows = append(rows, row)
	}
	return rows
}

func megabytes(n int64) string {
	return strconv.FormatFloat(float64(n)/(1<<20), 'f', -1, 64)
}
