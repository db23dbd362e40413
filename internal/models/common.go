// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// BeforeCreate assigns the record identity client-side so inserts work
// the same across dialects.
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type LicenseType string

const (
	LicenseTypePublic     LicenseType = "public"
	LicenseTypeTokenGated LicenseType = "token_gated"
	LicenseTypeNftGated   LicenseType = "nft_gated"
	LicenseTypePrivate    LicenseType = "private"
	LicenseTypeCustom     LicenseType = "custom"
)

func (t LicenseType) Valid() bool {
	switch t {
	case LicenseTypePublic, LicenseTypeTokenGated, LicenseTypeNftGated,
		LicenseTypePrivate, LicenseTypeCustom:
		return true
	}
	return false
}

type PromptStatus string

const (
	PromptStatusDraft      PromptStatus = "draft"
	PromptStatusActive     PromptStatus = "active"
	PromptStatusDeprecated PromptStatus = "deprecated"
	PromptStatusSuspended  PromptStatus = "suspended"
	PromptStatusRemoved    PromptStatus = "removed"
)

func (s PromptStatus) Valid() bool {
	switch s {
	case PromptStatusDraft, PromptStatusActive, PromptStatusDeprecated,
		PromptStatusSuspended, PromptStatusRemoved:
		return true
	}
	return false
}

type UserRole string

const (
	UserRoleAuthor UserRole = "author"
	UserRoleCaller UserRole = "caller"
	UserRoleAdmin  UserRole = "admin"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "pending"
	PurchaseStatusCompleted PurchaseStatus = "completed"
	PurchaseStatusFailed    PurchaseStatus = "failed"
)

// jsonbValue marshals a typed structure into a JSONB column value.
func jsonbValue(v interface{}) (driver.Value, error) {
	return json.Marshal(v)
}

// jsonbScan unmarshals a JSONB column value into a typed structure.
func jsonbScan(value interface{}, dest interface{}) error {
	if value == nil {
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		if str, ok := value.(string); ok {
			bytes = []byte(str)
		} else {
			return errors.New("unsupported JSONB source type")
		}
	}

	return json.Unmarshal(bytes, dest)
}
