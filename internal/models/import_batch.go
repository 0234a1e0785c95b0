package models

import (
	"time"

	"github.com/google/uuid"
)

// ImportBatch is the audit record of one XML import run.
type ImportBatch struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FileCount int       `json:"file_count"`
	Imported  int       `json:"imported"`
	Skipped   int       `json:"skipped"`
	Rejected  int       `json:"rejected"`
	CreatedAt time.Time `json:"created_at"`
}
