// internal/models/prompt.go
package models

import (
	"database/sql/driver"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/promptsig/vault-backend/internal/utils"
)

// Field limits from the registry's record layout.
const (
	MaxPromptIDLen     = 64
	MaxMetadataURILen  = 256
	MaxVersionLen      = 32
	MaxTags            = 5
	MaxRecentVersions  = 10
	MaxWhitelistSize   = 100
	MaxErrorMessageLen = 256
)

// VersionEntry is one immutable entry in a prompt's version history.
type VersionEntry struct {
	Version     string `json:"version"`
	MetadataURI string `json:"metadata_uri"`
	Timestamp   int64  `json:"timestamp"`
	ContentHash string `json:"content_hash"`
}

// VersionEntries is the JSONB-backed version ring buffer.
type VersionEntries []VersionEntry

func (v VersionEntries) Value() (driver.Value, error) {
	if v == nil {
		return jsonbValue(VersionEntries{})
	}
	return jsonbValue(v)
}

func (v *VersionEntries) Scan(value interface{}) error {
	return jsonbScan(value, v)
}

// TagNameList mirrors tag names into a flat queryable column. Postgres
// stores it as text[] behind a GIN index; other dialects fall back to
// the driver's text encoding of the array literal.
type TagNameList pq.StringArray

func (t TagNameList) Value() (driver.Value, error) {
	return pq.StringArray(t).Value()
}

func (t *TagNameList) Scan(value interface{}) error {
	return (*pq.StringArray)(t).Scan(value)
}

// GormDataType satisfies schema.GormDataTypeInterface so the schema
// parser can classify the field; the dialect-specific column type is
// still chosen by GormDBDataType.
func (TagNameList) GormDataType() string {
	return "text"
}

func (TagNameList) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

// Tag categorizes a prompt; tags are unique by name per prompt.
type Tag struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

type TagList []Tag

func (t TagList) Value() (driver.Value, error) {
	if t == nil {
		return jsonbValue(TagList{})
	}
	return jsonbValue(t)
}

func (t *TagList) Scan(value interface{}) error {
	return jsonbScan(value, t)
}

// AccessControl holds the per-prompt gating configuration.
type AccessControl struct {
	MinTokenBalance uint64      `json:"min_token_balance"`
	RequiredNftMint *string     `json:"required_nft_mint,omitempty"`
	Whitelist       []uuid.UUID `json:"whitelist,omitempty"`
	DailyUsageLimit *uint32     `json:"daily_usage_limit,omitempty"`
}

func (a AccessControl) Value() (driver.Value, error) {
	return jsonbValue(a)
}

func (a *AccessControl) Scan(value interface{}) error {
	return jsonbScan(value, a)
}

// Validate enforces the whitelist and usage-limit bounds.
func (a AccessControl) Validate() error {
	if len(a.Whitelist) > MaxWhitelistSize {
		return ErrInvalidAccessControl
	}
	if a.DailyUsageLimit != nil && (*a.DailyUsageLimit == 0 || *a.DailyUsageLimit > 10000) {
		return ErrInvalidAccessControl
	}
	return nil
}

// ExecutionStats aggregates a prompt's metered-access history.
type ExecutionStats struct {
	TotalExecutions  uint64 `json:"total_executions" gorm:"not null;default:0"`
	TotalRevenue     uint64 `json:"total_revenue" gorm:"not null;default:0"`
	AvgExecutionTime uint32 `json:"avg_execution_time" gorm:"not null;default:0"`
	SuccessRate      uint16 `json:"success_rate" gorm:"not null;default:0"`
	LastExecution    int64  `json:"last_execution" gorm:"not null;default:0"`
}

// RoyaltyConfig splits an execution fee four ways; the shares sum to
// exactly 10000 bps at creation.
type RoyaltyConfig struct {
	CreatorShareBps   uint16 `json:"creator_share_bps" gorm:"not null"`
	DaoShareBps       uint16 `json:"dao_share_bps" gorm:"not null"`
	ValidatorShareBps uint16 `json:"validator_share_bps" gorm:"not null"`
	BurnShareBps      uint16 `json:"burn_share_bps" gorm:"not null"`
}

// DefaultRoyaltyConfig is the 60/15/15/10 split applied when registration
// supplies none.
func DefaultRoyaltyConfig() RoyaltyConfig {
	return RoyaltyConfig{
		CreatorShareBps:   6000,
		DaoShareBps:       1500,
		ValidatorShareBps: 1500,
		BurnShareBps:      1000,
	}
}

// Validate checks the four shares sum to exactly 100%.
func (r RoyaltyConfig) Validate() error {
	total := uint32(r.CreatorShareBps) + uint32(r.DaoShareBps) +
		uint32(r.ValidatorShareBps) + uint32(r.BurnShareBps)
	if total != utils.BpsDenominator {
		return ErrInvalidRoyaltyDistribution
	}
	return nil
}

// Prompt is a versioned content asset with its license policy, fee
// schedule, access control, version history and running statistics.
// Prompts are never physically destroyed: status "removed" is the
// terminal logical deletion.
type Prompt struct {
	BaseModel
	PromptID       string         `json:"prompt_id" gorm:"uniqueIndex;size:64;not null"`
	AuthorID       uuid.UUID      `json:"author_id" gorm:"type:uuid;not null;index"`
	MetadataURI    string         `json:"metadata_uri" gorm:"size:256;not null"`
	CurrentVersion string         `json:"current_version" gorm:"size:32;not null"`
	LicenseType    LicenseType    `json:"license_type" gorm:"type:varchar(20);not null;index"`
	FeeAmount      uint64         `json:"fee_amount" gorm:"not null;default:0"`
	TokenGate      *string        `json:"token_gate,omitempty" gorm:"size:64"`
	ExecutionCount uint64         `json:"execution_count" gorm:"not null;default:0"`
	Status         PromptStatus   `json:"status" gorm:"type:varchar(20);not null;index"`
	VersionCount   uint8          `json:"version_count" gorm:"not null;default:1"`
	RecentVersions VersionEntries `json:"recent_versions" gorm:"type:jsonb"`
	ExecutionStats ExecutionStats `json:"execution_stats" gorm:"embedded;embeddedPrefix:stats_"`
	RoyaltyConfig  RoyaltyConfig  `json:"royalty_config" gorm:"embedded;embeddedPrefix:royalty_"`
	Tags           TagList        `json:"tags" gorm:"type:jsonb"`
	TagNames       TagNameList    `json:"-"`
	AccessControl  AccessControl  `json:"access_control" gorm:"type:jsonb"`
	LastUpdated    int64          `json:"last_updated" gorm:"not null"`

	// Relationships
	Author User `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
}

// IsActive reports whether the prompt is active and usable.
func (p *Prompt) IsActive() bool {
	return p.Status == PromptStatusActive
}

// IsAccessible reports whether the prompt can still be executed
// (active or deprecated).
func (p *Prompt) IsAccessible() bool {
	return p.Status == PromptStatusActive || p.Status == PromptStatusDeprecated
}

// HasAccess evaluates the license gate for a user. NFT-gated and custom
// licenses require checks delegated to collaborators outside this core,
// so they deny here.
func (p *Prompt) HasAccess(user uuid.UUID, userTokenBalance uint64) bool {
	switch p.LicenseType {
	case LicenseTypePublic:
		return true
	case LicenseTypeTokenGated:
		return userTokenBalance >= p.AccessControl.MinTokenBalance
	case LicenseTypePrivate:
		for _, allowed := range p.AccessControl.Whitelist {
			if allowed == user {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Touch records the mutation time.
func (p *Prompt) Touch(now int64) {
	p.LastUpdated = now
}

// AddVersion appends an entry to the version ring buffer, evicting the
// oldest past 10. VersionCount keeps counting all-time versions after
// eviction and never decrements.
func (p *Prompt) AddVersion(entry VersionEntry) {
	if len(p.RecentVersions) >= MaxRecentVersions {
		p.RecentVersions = append(p.RecentVersions[:0], p.RecentVersions[1:]...)
	}

	p.RecentVersions = append(p.RecentVersions, entry)
	p.CurrentVersion = entry.Version
	p.MetadataURI = entry.MetadataURI
	p.VersionCount = utils.SaturatingAddUint8(p.VersionCount, 1)
	p.Touch(entry.Timestamp)
}

// LatestVersion returns the most recently appended entry.
func (p *Prompt) LatestVersion() *VersionEntry {
	if len(p.RecentVersions) == 0 {
		return nil
	}
	return &p.RecentVersions[len(p.RecentVersions)-1]
}

// HasTag reports whether a tag with the given name exists.
func (p *Prompt) HasTag(name string) bool {
	for _, tag := range p.Tags {
		if tag.Name == name {
			return true
		}
	}
	return false
}

// AddTag appends a tag, enforcing the count limit and name uniqueness.
func (p *Prompt) AddTag(tag Tag, now int64) error {
	if len(p.Tags) >= MaxTags {
		return ErrTooManyTags
	}
	if p.HasTag(tag.Name) {
		return ErrDuplicateTag
	}

	p.Tags = append(p.Tags, tag)
	p.SyncTagNames()
	p.Touch(now)
	return nil
}

// RemoveTag deletes the tag with the given name.
func (p *Prompt) RemoveTag(name string, now int64) error {
	kept := p.Tags[:0]
	for _, tag := range p.Tags {
		if tag.Name != name {
			kept = append(kept, tag)
		}
	}
	if len(kept) == len(p.Tags) {
		return ErrTagNotFound
	}

	p.Tags = kept
	p.SyncTagNames()
	p.Touch(now)
	return nil
}

// SyncTagNames rebuilds the denormalized search column from the tag
// list.
func (p *Prompt) SyncTagNames() {
	names := make(TagNameList, len(p.Tags))
	for i, tag := range p.Tags {
		names[i] = tag.Name
	}
	p.TagNames = names
}

// CalculateFeeDistribution splits a fee by the prompt's royalty config.
func (p *Prompt) CalculateFeeDistribution(totalFee uint64) (utils.FeeDistribution, error) {
	return utils.SplitFee(
		totalFee,
		p.RoyaltyConfig.CreatorShareBps,
		p.RoyaltyConfig.DaoShareBps,
		p.RoyaltyConfig.ValidatorShareBps,
	)
}

// RecordExecution folds one execution into the running statistics.
// Counters saturate; the average and success rate are recomputed from the
// stored aggregates. The success rate reconstructs the prior successful
// count from the stored rate, which is integer-division lossy; the formula
// is kept as-is for bit-for-bit reproducibility with existing records.
func (p *Prompt) RecordExecution(executionTimeMs uint32, success bool, revenue uint64, now int64) {
	p.ExecutionCount = utils.SaturatingAddUint64(p.ExecutionCount, 1)
	p.ExecutionStats.TotalExecutions = utils.SaturatingAddUint64(p.ExecutionStats.TotalExecutions, 1)

	if success {
		p.ExecutionStats.TotalRevenue = utils.SaturatingAddUint64(p.ExecutionStats.TotalRevenue, revenue)
	}

	n := p.ExecutionStats.TotalExecutions
	totalTime := uint64(p.ExecutionStats.AvgExecutionTime) * (n - 1)
	p.ExecutionStats.AvgExecutionTime = uint32((totalTime + uint64(executionTimeMs)) / n)

	successful := uint64(p.ExecutionStats.SuccessRate) * (n - 1) / utils.BpsDenominator
	if success {
		successful++
	}
	p.ExecutionStats.SuccessRate = uint16(successful * utils.BpsDenominator / n)

	p.ExecutionStats.LastExecution = now
	p.Touch(now)
}
