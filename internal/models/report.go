package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ReportFormat is the rendered output type of a report job.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// ReportStatus is the lifecycle state of a report job.
type ReportStatus string

const (
	ReportStatusQueued  ReportStatus = "queued"
	ReportStatusRunning ReportStatus = "running"
	ReportStatusDone    ReportStatus = "done"
	ReportStatusFailed  ReportStatus = "failed"
)

// ReportParams are the stats filters a report is generated with. Stored as
// JSONB on the job row.
type ReportParams struct {
	CourseInitial string   `json:"course_initial,omitempty"`
	CoursePrefix  string   `json:"course_prefix,omitempty"`
	SearchQuery   string   `json:"search_query,omitempty"`
	MaxAvgHours   *float64 `json:"max_avg_hours,omitempty"`
	MinAvgSalary  *float64 `json:"min_avg_salary,omitempty"`
}

// Value implements driver.Valuer for JSONB storage.
func (p ReportParams) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements sql.Scanner for JSONB storage.
func (p *ReportParams) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	case nil:
		*p = ReportParams{}
		return nil
	default:
		return fmt.Errorf("unsupported report params type %T", src)
	}
}

// ReportJob is a persisted asynchronous report generation task.
type ReportJob struct {
	ID           string       `db:"id" json:"id"`
	Format       ReportFormat `db:"format" json:"format"`
	Params       ReportParams `db:"params" json:"params"`
	Status       ReportStatus `db:"status" json:"status"`
	Progress     int          `db:"progress" json:"progress"`
	FilePath     *string      `db:"file_path" json:"-"`
	ErrorMessage *string      `db:"error_message" json:"error,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	FinishedAt   *time.Time   `db:"finished_at" json:"finished_at,omitempty"`
}
