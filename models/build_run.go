package models

import (
	"time"
)

// Status-Werte für BuildRun.
const (
	BuildStatusRunning   = "running"
	BuildStatusCompleted = "completed"
	BuildStatusFailed    = "failed"
)

// BuildRun protokolliert einen PKN-Build-Lauf. Die Kantentabelle selbst wird
// nicht relational gespeichert, sondern als TSV nach S3 exportiert.
type BuildRun struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Status string `json:"status" gorm:"index"`

	// Params ist die serialisierte Build-Konfiguration (JSON).
	Params string `json:"params,omitempty" gorm:"type:text"`

	Sources  string `json:"sources,omitempty"`
	Organism int    `json:"organism"`
	Subset   string `json:"subset,omitempty"`

	EdgeCount      int `json:"edge_count"`
	ConnectorCount int `json:"connector_count"`
	DroppedRows    int `json:"dropped_rows"`

	S3Link     string     `json:"s3_link,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Error      string     `json:"error,omitempty" gorm:"type:text"`
}

// SourceSetting sind die persistierten Parameter einer Datenquelle,
// editierbar über die API und vom Scheduler genutzt.
type SourceSetting struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name    string `json:"name" gorm:"uniqueIndex;not null"`
	Enabled bool   `json:"enabled"`

	// ScoreThreshold überschreibt den globalen Schwellwert für Quellen
	// mit Evidenz-Score (nil = globaler Default).
	ScoreThreshold *int `json:"score_threshold,omitempty"`

	IncludeReverse bool `json:"include_reverse"`
	MaxRecords     int  `json:"max_records"`
}
