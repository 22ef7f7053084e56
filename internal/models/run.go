package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RunStatusCompleted = "completed"
	RunStatusDryRun    = "dry_run"
	RunStatusFailed    = "failed"
)

// AugmentRun is the ledger row for one augmentation run.
type AugmentRun struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CollectionPath string     `gorm:"size:1024;not null" json:"collection_path"`
	Seed           int64      `json:"seed"`
	RegionMode     string     `gorm:"size:16;not null" json:"region_mode"`
	CountSource    string     `gorm:"size:16;not null" json:"count_source"`
	InputCount     int        `json:"input_count"`
	GeneratedCount int        `json:"generated_count"`
	TotalCount     int        `json:"total_count"`
	EraDeltas      string     `gorm:"type:text" json:"era_deltas"`    // JSON object key -> delta
	RegionDeltas   string     `gorm:"type:text" json:"region_deltas"` // JSON object key -> delta
	InputDigest    string     `gorm:"size:128" json:"input_digest"`   // blake2b-256 hex
	BackupKey      string     `gorm:"size:512" json:"backup_key,omitempty"`
	Status         string     `gorm:"size:16;not null;default:'completed'" json:"status"`
	ErrorMessage   string     `gorm:"type:text" json:"error_message,omitempty"`
	StartedAt      time.Time  `gorm:"not null" json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`

	Images []GeneratedImage `gorm:"foreignKey:RunID" json:"images,omitempty"`
}

func (AugmentRun) TableName() string {
	return "augment_runs"
}

func (r *AugmentRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}
	return nil
}

// GeneratedImage mirrors one synthesized record. Image ids are unique within a
// run only: a restored or different collection starts numbering again.
type GeneratedImage struct {
	ID        uint       `gorm:"primaryKey" json:"-"`
	RunID     uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_run_image" json:"run_id"`
	ImageID   string     `gorm:"size:128;not null;index;uniqueIndex:idx_run_image" json:"image_id"`
	EraBucket string     `gorm:"size:32;not null" json:"era_bucket"`
	URL       string     `gorm:"size:1024" json:"url"`
	Position  [3]float64 `gorm:"serializer:json" json:"position"`
	Era       int        `json:"era"`
	Region    string     `gorm:"size:64" json:"region"`
	Colors    []string   `gorm:"serializer:json" json:"colors"`
	Type      string     `gorm:"size:64" json:"type"`
	CreatedAt time.Time  `json:"created_at"`
}

func (GeneratedImage) TableName() string {
	return "generated_images"
}

func NewGeneratedImage(runID uuid.UUID, bucket string, r ImageRecord) GeneratedImage {
	return GeneratedImage{
		RunID:     runID,
		ImageID:   r.ID,
		EraBucket: bucket,
		URL:       r.URL,
		Position:  r.Position,
		Era:       r.Era,
		Region:    r.Region,
		Colors:    r.Colors,
		Type:      r.Type,
	}
}
