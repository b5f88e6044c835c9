package scheduleview

import (
	"strings"

	"github.com/dalemusser/sofischeduler/internal/domain/models"
)

// NotAvailable is shown for panel slots with no faculty assigned.
const NotAvailable = "N/A"

const (
	truncateOver  = 10
	truncateKeep  = 30
	truncateTrail = "..."
)

// DateGroup holds the entries that share one formatted date.
type DateGroup struct {
	Date    string
	Entries []models.ScheduleEntry
}

// GroupByDate buckets entries by formatted date. Groups appear in the order
// their date is first seen and entries keep their input order inside a
// group. Every entry lands in exactly one group.
func (f Formatter) GroupByDate(entries []models.ScheduleEntry) []DateGroup {
	if len(entries) == 0 {
		return nil
	}
	index := make(map[string]int)
	var groups []DateGroup
	for _, e := range entries {
		key := f.FormatDate(e.Date)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, DateGroup{Date: key})
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}
	return groups
}

// GroupByDate groups with the package-level formatter.
func GroupByDate(entries []models.ScheduleEntry) []DateGroup {
	return Default().GroupByDate(entries)
}

// TruncateTitle shortens titles for the column cards. Any title longer than
// ten characters is cut to its first thirty followed by "...", so titles of
// 11 to 30 characters gain the marker without losing text.
func TruncateTitle(title string) string {
	r := []rune(title)
	if len(r) <= truncateOver {
		return title
	}
	if len(r) > truncateKeep {
		r = r[:truncateKeep]
	}
	return string(r) + truncateTrail
}

// PembimbingText lists the supervisors, or NotAvailable.
func PembimbingText(p models.PanelAssignment) string {
	return joinIDs(p.Pembimbing1ID, p.Pembimbing2ID)
}

// PengujiText lists the examiners, or NotAvailable.
func PengujiText(p models.PanelAssignment) string {
	return joinIDs(p.Penguji1ID, p.Penguji2ID)
}

func joinIDs(ids ...string) string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	if len(out) == 0 {
		return NotAvailable
	}
	return strings.Join(out, ", ")
}

// EntryRow is one schedule entry ready for display.
type EntryRow struct {
	Date       string
	Field      string
	Title      string
	ShortTitle string
	StudentID  string
	Room       string
	Pembimbing string
	Penguji    string
}

// Row converts e for display.
func (f Formatter) Row(e models.ScheduleEntry) EntryRow {
	return EntryRow{
		Date:       f.FormatDate(e.Date),
		Field:      e.Field,
		Title:      e.ThesisTitle,
		ShortTitle: TruncateTitle(e.ThesisTitle),
		StudentID:  e.StudentID,
		Room:       e.Room,
		Pembimbing: PembimbingText(e.PanelAssignment),
		Penguji:    PengujiText(e.PanelAssignment),
	}
}

// Rows converts entries in input order.
func (f Formatter) Rows(entries []models.ScheduleEntry) []EntryRow {
	rows := make([]EntryRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, f.Row(e))
	}
	return rows
}

// RowGroup is a DateGroup with its entries converted for display.
type RowGroup struct {
	Date string
	Rows []EntryRow
}

// RowGroups groups entries by date and converts each group.
func (f Formatter) RowGroups(entries []models.ScheduleEntry) []RowGroup {
	groups := f.GroupByDate(entries)
	out := make([]RowGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, RowGroup{Date: g.Date, Rows: f.Rows(g.Entries)})
	}
	return out
}

// SelectLatest picks the run the views treat as current: the last element
// the backend returned. ok is false for an empty list.
func SelectLatest(runs []models.ScheduleRun) (models.ScheduleRun, bool) {
	if len(runs) == 0 {
		return models.ScheduleRun{}, false
	}
	return runs[len(runs)-1], true
}
