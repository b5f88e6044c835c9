// internal/domain/models/upload.go
package models

import "time"

// UploadRecord captures one attempt to upload the faculty and schedule files
// to the scheduling backend. CreatedAt is indexed for the recent-uploads list.
type UploadRecord struct {
	ID            string    `bson:"_id" json:"id"`
	DosenFile     string    `bson:"dosen_file" json:"dosen_file"`
	DosenSize     int64     `bson:"dosen_size" json:"dosen_size"`
	JadwalFile    string    `bson:"jadwal_file" json:"jadwal_file"`
	JadwalSize    int64     `bson:"jadwal_size" json:"jadwal_size"`
	Success       bool      `bson:"success" json:"success"`
	ErrorKind     string    `bson:"error_kind,omitempty" json:"error_kind,omitempty"`
	Error         string    `bson:"error,omitempty" json:"error,omitempty"`
	RunID         string    `bson:"run_id,omitempty" json:"run_id,omitempty"`
	TotalSchedule int       `bson:"total_schedule" json:"total_schedule"`
	IP            string    `bson:"ip,omitempty" json:"ip,omitempty"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
}

// DefaultSiteName is the site name used when none is configured.
const DefaultSiteName = "Sofi Scheduler"
