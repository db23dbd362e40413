// internal/services/execution_service_test.go
package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptsig/vault-backend/internal/models"
)

func testExecutionInput(promptID, version string) RecordExecutionInput {
	return RecordExecutionInput{
		PromptID:        promptID,
		Version:         version,
		InputHash:       strings.Repeat("ab", 32),
		OutputHash:      strings.Repeat("cd", 32),
		Signature:       strings.Repeat("ef", 64),
		ExecutionTimeMs: 120,
		Success:         true,
	}
}

func TestRecordExecutionDistributesFeeExactly(t *testing.T) {
	f := newVaultFixture(t)
	author := f.createUser(t, "author", models.UserRoleAuthor)
	caller := f.createUser(t, "caller", models.UserRoleCaller)

	f.registerPrompt(t, author.ID, "p1", 1000)
	f.fund(t, caller.ID, 1000)

	record, err := f.executions.RecordExecution(caller.ID, testExecutionInput("p1", "1.0.0"))
	require.NoError(t, err)
	assert.True(t, record.Success)

	// 1000 at the default 6000/1500/1500/1000 split.
	assert.Equal(t, uint64(600), f.balance(t, models.LedgerOwnerForUser(author.ID)))
	assert.Equal(t, uint64(150), f.balance(t, models.LedgerOwnerForUser(f.state.Treasury)))
	assert.Equal(t, uint64(150), f.balance(t, models.LedgerOwnerValidatorPool))
	assert.Equal(t, uint64(100), f.balance(t, models.LedgerOwnerBurnSink))
	assert.Equal(t, uint64(0), f.balance(t, models.LedgerOwnerForUser(caller.ID)))

	prompt, err := f.prompts.Get("p1")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), prompt.ExecutionStats.TotalExecutions)
	assert.Equal(t, uint64(1000), prompt.ExecutionStats.TotalRevenue)
	assert.Equal(t, uint16(10000), prompt.ExecutionStats.SuccessRate)
}

func TestRecordExecutionStoresReportedVersion(t *testing.T) {
	f := newVaultFixture(t)
	author := f.createUser(t, "author", models.UserRoleAuthor)
	caller := f.createUser(t, "caller", models.UserRoleCaller)

	prompt := f.registerPrompt(t, author.ID, "versioned", 0)
	_, err := f.prompts.CreateVersion(author.ID, "versioned", VersionInput{
		Version:     "2.0.0",
		MetadataURI: "ipfs://versioned-v2",
	})
	require.NoError(t, err)

	// A caller attesting an execution of the older version keeps that
	// version on the record.
	record, err := f.executions.RecordExecution(caller.ID, testExecutionInput("versioned", prompt.CurrentVersion))
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", record.Version)

	_, err = f.executions.RecordExecution(caller.ID, testExecutionInput("versioned", ""))
	assert.ErrorIs(t, err, models.ErrEmptyVersion)
}

func TestRecordExecutionInsufficientPayment(t *testing.T) {
	f := newVaultFixture(t)
	author := f.createUser(t, "author", models.UserRoleAuthor)
	caller := f.createUser(t, "caller", models.UserRoleCaller)

	f.registerPrompt(t, author.ID, "pricy", 1000)
	f.fund(t, caller.ID, 400)

	_, err := f.executions.RecordExecution(caller.ID, testExecutionInput("pricy", "1.0.0"))
	assert.ErrorIs(t, err, models.ErrInsufficientPayment)

	// Nothing moved and no record was written.
	assert.Equal(t, uint64(400), f.balance(t, models.LedgerOwnerForUser(caller.ID)))
	var records int64
	require.NoError(t, f.db.Model(&models.ExecutionRecord{}).Count(&records).Error)
	assert.Equal(t, int64(0), records)
}

func TestRecordExecutionBlockedWhenPaused(t *testing.T) {
	f := newVaultFixture(t)
	author := f.createUser(t, "author", models.UserRoleAuthor)
	caller := f.createUser(t, "caller", models.UserRoleCaller)

	f.registerPrompt(t, author.ID, "p1", 0)
	f.pause(t)

	_, err := f.executions.RecordExecution(caller.ID, testExecutionInput("p1", "1.0.0"))
	assert.ErrorIs(t, err, models.ErrVaultPaused)
}
