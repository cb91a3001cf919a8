package models

import (
	"time"

	"github.com/google/uuid"
)

// Resume is a row in the resumes table. ParsedData holds the raw JSONB
// produced by the LLM extraction job; it stays opaque to the service.
type Resume struct {
	ID         uuid.UUID  `json:"id"`
	Filename   string     `json:"filename"`
	RawText    string     `json:"raw_text"`
	ParsedData []byte     `json:"parsed_data,omitempty"`
	S3URL      *string    `json:"s3_url,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}
