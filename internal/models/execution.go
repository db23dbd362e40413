// internal/models/execution.go
package models

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/google/uuid"
)

// ExecutionRecord is the append-only audit fact for one metered access.
// It is created once and never mutated; the (prompt, caller, executed_at)
// triple is unique and a collision is a hard error.
type ExecutionRecord struct {
	BaseModel
	PromptID        string    `json:"prompt_id" gorm:"size:64;not null;uniqueIndex:idx_execution_key,priority:1;index"`
	CallerID        uuid.UUID `json:"caller_id" gorm:"type:uuid;not null;uniqueIndex:idx_execution_key,priority:2"`
	Version         string    `json:"version" gorm:"size:32;not null"`
	InputHash       string    `json:"input_hash" gorm:"size:64;not null"`
	OutputHash      string    `json:"output_hash" gorm:"size:64;not null"`
	ExecutedAt      int64     `json:"executed_at" gorm:"not null;uniqueIndex:idx_execution_key,priority:3"`
	Signature       string    `json:"signature" gorm:"size:128;not null"`
	ExecutionTimeMs uint64    `json:"execution_time_ms" gorm:"not null"`
	Success         bool      `json:"success" gorm:"not null"`
	ErrorMessage    *string   `json:"error_message,omitempty" gorm:"size:256"`

	// Relationships
	Caller User `json:"caller,omitempty" gorm:"foreignKey:CallerID"`
}

// VerifySigner is the core's notion of signature verification: equality
// against the expected signer identity. Cryptographic verification belongs
// to an external collaborator.
func (r *ExecutionRecord) VerifySigner(expected uuid.UUID) bool {
	return r.CallerID == expected
}

// ExecutionHash digests the record's identifying fields for verification
// surfaces.
func (r *ExecutionRecord) ExecutionHash() [32]byte {
	h := sha256.New()
	h.Write([]byte(r.PromptID))
	h.Write(r.CallerID[:])
	h.Write([]byte(r.Version))
	h.Write([]byte(r.InputHash))
	h.Write([]byte(r.OutputHash))

	var ts [8]byte
	binary.LittleEndian.PutUint64(ts[:], uint64(r.ExecutedAt))
	h.Write(ts[:])

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// IsRecent reports whether the execution happened within the last day.
func (r *ExecutionRecord) IsRecent(now int64) bool {
	return now-r.ExecutedAt < 86400
}
