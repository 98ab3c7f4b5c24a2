package model

import "time"

// PredictionRecord is one screening result kept for the audit trail.
// Confidence is the raw model probability in [0, 1]; the API formats it
// for display. Cached marks results served from the result cache without
// rerunning the model.
type PredictionRecord struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	RequestID   string    `gorm:"size:36;not null;uniqueIndex" json:"request_id"`
	Label       string    `gorm:"size:64;not null;index" json:"label"`
	Confidence  float64   `gorm:"not null" json:"confidence"`
	ImageSHA256 string    `gorm:"size:64;index" json:"image_sha256"`
	ImageBytes  int64     `json:"image_bytes"`
	DurationMs  int64     `json:"duration_ms"`
	Cached      bool      `json:"cached"`
	ArchiveFile string    `gorm:"size:256" json:"archive_file,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
