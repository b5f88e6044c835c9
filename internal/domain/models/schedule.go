// internal/domain/models/schedule.go
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// ScheduleEntry is one thesis defense (sidang) as assigned by the backend.
// Date is kept as the raw string the backend sent; formatting happens in
// the view layer.
type ScheduleEntry struct {
	Date            string          `json:"date"`
	Field           string          `json:"field"`
	ThesisTitle     string          `json:"thesisTitle"`
	StudentID       string          `json:"studentId"`
	Room            string          `json:"room"`
	PanelAssignment PanelAssignment `json:"panelAssignment"`
}

// PanelAssignment names the faculty (dosen) assigned to a defense.
// Pembimbing2ID and Penguji2ID are optional.
type PanelAssignment struct {
	Pembimbing1ID string `json:"pembimbing1Id"`
	Pembimbing2ID string `json:"pembimbing2Id,omitempty"`
	Penguji1ID    string `json:"penguji1Id"`
	Penguji2ID    string `json:"penguji2Id,omitempty"`
}

// ScheduleRun is one generation run returned by the backend: the schedule
// itself plus the analysis computed server-side.
type ScheduleRun struct {
	ID        string       `json:"id,omitempty"`
	Schedule  ScheduleData `json:"schedule"`
	CreatedAt string       `json:"created_at,omitempty"`
}

// UnmarshalJSON accepts either "id" or Mongo-style "_id" for the run id.
func (r *ScheduleRun) UnmarshalJSON(b []byte) error {
	type plain ScheduleRun
	aux := struct {
		*plain
		MongoID json.RawMessage `json:"_id"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if r.ID == "" && len(aux.MongoID) > 0 {
		r.ID = rawID(aux.MongoID)
	}
	return nil
}

// rawID turns "_id" into a string. Extended JSON ({"$oid": "..."}) is unwrapped.
func rawID(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var oid struct {
		OID string `json:"$oid"`
	}
	if err := json.Unmarshal(raw, &oid); err == nil && oid.OID != "" {
		return oid.OID
	}
	return string(bytes.Trim(raw, `"`))
}

// ScheduleData is the "schedule" object nested in a ScheduleRun.
type ScheduleData struct {
	Schedule      []ScheduleEntry `json:"schedule"`
	Analysis      Analysis        `json:"analysis"`
	TotalSchedule int             `json:"total_schedule"`
	TotalDosen    int             `json:"total_dosen"`
	AvgDosen      float64         `json:"avg_dosen"`
	UniqueFields  int             `json:"unique_fields"`
}

// Analysis holds the backend's derived figures for a run.
type Analysis struct {
	Workload Workload `json:"workload"`
}

// WorkloadItem is one faculty member and their number of assigned defenses.
type WorkloadItem struct {
	DosenID string
	Count   int
}

// Workload maps faculty id to assigned-defense count, keeping the key order
// of the JSON object the backend sent.
type Workload []WorkloadItem

// Labels returns the faculty ids in backend order.
func (w Workload) Labels() []string {
	out := make([]string, len(w))
	for i, it := range w {
		out[i] = it.DosenID
	}
	return out
}

// Values returns the counts in backend order.
func (w Workload) Values() []int {
	out := make([]int, len(w))
	for i, it := range w {
		out[i] = it.Count
	}
	return out
}

// Get returns the count for a faculty id.
func (w Workload) Get(id string) (int, bool) {
	for _, it := range w {
		if it.DosenID == id {
			return it.Count, true
		}
	}
	return 0, false
}

// UnmarshalJSON decodes a JSON object token by token so key order survives.
// A repeated key keeps its first position and takes the last value.
func (w *Workload) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*w = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("workload: expected object, got %v", tok)
	}

	out := Workload{}
	pos := map[string]int{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("workload: expected key, got %v", tok)
		}

		var n json.Number
		if err := dec.Decode(&n); err != nil {
			return fmt.Errorf("workload %q: %w", key, err)
		}
		f, err := n.Float64()
		if err != nil {
			return fmt.Errorf("workload %q: %w", key, err)
		}
		count := int(math.Round(f))

		if i, seen := pos[key]; seen {
			out[i].Count = count
			continue
		}
		pos[key] = len(out)
		out = append(out, WorkloadItem{DosenID: key, Count: count})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*w = out
	return nil
}

// MarshalJSON writes the workload back as an object in its stored order.
func (w Workload) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, it := range w {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(it.DosenID)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		fmt.Fprintf(&buf, "%d", it.Count)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
