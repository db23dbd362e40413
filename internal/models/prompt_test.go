// internal/models/prompt_test.go
package models

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPrompt() *Prompt {
	return &Prompt{
		PromptID:       "test-prompt",
		AuthorID:       uuid.New(),
		MetadataURI:    "ipfs://meta-v1",
		CurrentVersion: "1.0.0",
		LicenseType:    LicenseTypePublic,
		FeeAmount:      1000,
		Status:         PromptStatusActive,
		VersionCount:   1,
		RecentVersions: VersionEntries{{
			Version:     "1.0.0",
			MetadataURI: "ipfs://meta-v1",
			Timestamp:   1000,
		}},
		RoyaltyConfig: DefaultRoyaltyConfig(),
		LastUpdated:   1000,
	}
}

func TestAddVersionRingBuffer(t *testing.T) {
	p := newTestPrompt()

	for i := 2; i <= 15; i++ {
		p.AddVersion(VersionEntry{
			Version:     fmt.Sprintf("1.0.%d", i),
			MetadataURI: fmt.Sprintf("ipfs://meta-v%d", i),
			Timestamp:   int64(1000 + i),
		})
	}

	// Buffer holds at most ten entries; the all-time counter keeps going.
	assert.Len(t, p.RecentVersions, 10)
	assert.Equal(t, uint8(15), p.VersionCount)

	// Oldest entries were evicted in order.
	assert.Equal(t, "1.0.6", p.RecentVersions[0].Version)
	assert.Equal(t, "1.0.15", p.RecentVersions[9].Version)

	// Head fields follow the newest entry.
	assert.Equal(t, "1.0.15", p.CurrentVersion)
	assert.Equal(t, "ipfs://meta-v15", p.MetadataURI)
	assert.Equal(t, int64(1015), p.LastUpdated)

	latest := p.LatestVersion()
	require.NotNil(t, latest)
	assert.Equal(t, "1.0.15", latest.Version)
}

func TestVersionCountSaturates(t *testing.T) {
	p := newTestPrompt()
	p.VersionCount = 255

	p.AddVersion(VersionEntry{Version: "2.0.0", MetadataURI: "ipfs://m", Timestamp: 2000})
	assert.Equal(t, uint8(255), p.VersionCount)
	assert.Equal(t, "2.0.0", p.CurrentVersion)
}

func TestRecordExecutionStatistics(t *testing.T) {
	p := newTestPrompt()

	p.RecordExecution(100, true, 1000, 2000)
	assert.Equal(t, uint64(1), p.ExecutionStats.TotalExecutions)
	assert.Equal(t, uint32(100), p.ExecutionStats.AvgExecutionTime)
	assert.Equal(t, uint16(10000), p.ExecutionStats.SuccessRate)
	assert.Equal(t, uint64(1000), p.ExecutionStats.TotalRevenue)
	assert.Equal(t, int64(2000), p.ExecutionStats.LastExecution)

	p.RecordExecution(200, false, 1000, 2100)
	assert.Equal(t, uint64(2), p.ExecutionStats.TotalExecutions)
	assert.Equal(t, uint32(150), p.ExecutionStats.AvgExecutionTime)
	assert.Equal(t, uint16(5000), p.ExecutionStats.SuccessRate)
	// Failed executions contribute no revenue.
	assert.Equal(t, uint64(1000), p.ExecutionStats.TotalRevenue)

	assert.Equal(t, uint64(2), p.ExecutionCount)
	assert.Equal(t, int64(2100), p.LastUpdated)
}

func TestRecordExecutionSuccessRateReconstruction(t *testing.T) {
	p := newTestPrompt()

	// 2 successes out of 3 lands on floor(2*10000/3).
	p.RecordExecution(10, true, 0, 1)
	p.RecordExecution(10, true, 0, 2)
	p.RecordExecution(10, false, 0, 3)
	assert.Equal(t, uint16(6666), p.ExecutionStats.SuccessRate)

	// The reconstruction is lossy: floor(6666*3/10000) recovers only one
	// of the two prior successes, so the fourth update lands on 5000.
	p.RecordExecution(10, true, 0, 4)
	assert.Equal(t, uint16(5000), p.ExecutionStats.SuccessRate)
}

func TestHasAccessPublic(t *testing.T) {
	p := newTestPrompt()
	assert.True(t, p.HasAccess(uuid.New(), 0))
}

func TestHasAccessTokenGated(t *testing.T) {
	p := newTestPrompt()
	p.LicenseType = LicenseTypeTokenGated
	p.AccessControl = AccessControl{MinTokenBalance: 50}

	assert.False(t, p.HasAccess(uuid.New(), 49))
	assert.True(t, p.HasAccess(uuid.New(), 50))
	assert.True(t, p.HasAccess(uuid.New(), 51))
}

func TestHasAccessPrivateWhitelist(t *testing.T) {
	member := uuid.New()
	p := newTestPrompt()
	p.LicenseType = LicenseTypePrivate
	p.AccessControl = AccessControl{Whitelist: []uuid.UUID{member}}

	assert.True(t, p.HasAccess(member, 0))
	assert.False(t, p.HasAccess(uuid.New(), 1<<40))
}

func TestHasAccessUnsupportedLicenses(t *testing.T) {
	p := newTestPrompt()
	p.LicenseType = LicenseTypeNftGated
	assert.False(t, p.HasAccess(uuid.New(), 1<<40))

	p.LicenseType = LicenseTypeCustom
	assert.False(t, p.HasAccess(uuid.New(), 1<<40))
}

func TestIsAccessibleByStatus(t *testing.T) {
	p := newTestPrompt()

	p.Status = PromptStatusActive
	assert.True(t, p.IsAccessible())
	p.Status = PromptStatusDeprecated
	assert.True(t, p.IsAccessible())

	for _, status := range []PromptStatus{PromptStatusDraft, PromptStatusSuspended, PromptStatusRemoved} {
		p.Status = status
		assert.False(t, p.IsAccessible(), "status %s", status)
	}
}

func TestTagLimitsAndUniqueness(t *testing.T) {
	p := newTestPrompt()

	for i := 0; i < MaxTags; i++ {
		require.NoError(t, p.AddTag(Tag{Name: fmt.Sprintf("tag%d", i)}, 100))
	}
	assert.ErrorIs(t, p.AddTag(Tag{Name: "overflow"}, 100), ErrTooManyTags)
	assert.ErrorIs(t, p.AddTag(Tag{Name: "tag0"}, 100), ErrTooManyTags)

	assert.Len(t, p.TagNames, MaxTags)

	require.NoError(t, p.RemoveTag("tag0", 200))
	assert.False(t, p.HasTag("tag0"))
	assert.NotContains(t, p.TagNames, "tag0")
	assert.ErrorIs(t, p.RemoveTag("tag0", 200), ErrTagNotFound)

	assert.ErrorIs(t, p.AddTag(Tag{Name: "tag1"}, 300), ErrDuplicateTag)
}

func TestRoyaltyConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultRoyaltyConfig().Validate())

	bad := RoyaltyConfig{CreatorShareBps: 6000, DaoShareBps: 1500, ValidatorShareBps: 1500, BurnShareBps: 999}
	assert.ErrorIs(t, bad.Validate(), ErrInvalidRoyaltyDistribution)

	over := RoyaltyConfig{CreatorShareBps: 9000, DaoShareBps: 2000, ValidatorShareBps: 0, BurnShareBps: 0}
	assert.ErrorIs(t, over.Validate(), ErrInvalidRoyaltyDistribution)
}

func TestCalculateFeeDistribution(t *testing.T) {
	p := newTestPrompt()

	split, err := p.CalculateFeeDistribution(1000)
	require.NoError(t, err)
	assert.Equal(t, uint64(600), split.Creator)
	assert.Equal(t, uint64(150), split.Dao)
	assert.Equal(t, uint64(150), split.Validator)
	assert.Equal(t, uint64(100), split.Burn)
}

func TestAccessControlValidate(t *testing.T) {
	ok := AccessControl{MinTokenBalance: 10}
	assert.NoError(t, ok.Validate())

	big := AccessControl{Whitelist: make([]uuid.UUID, MaxWhitelistSize+1)}
	assert.ErrorIs(t, big.Validate(), ErrInvalidAccessControl)

	zero := uint32(0)
	badLimit := AccessControl{DailyUsageLimit: &zero}
	assert.ErrorIs(t, badLimit.Validate(), ErrInvalidAccessControl)
}
