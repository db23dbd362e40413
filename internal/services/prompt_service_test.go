// internal/services/prompt_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptsig/vault-backend/internal/models"
)

func TestRegisterThenDuplicateRegisterFails(t *testing.T) {
	f := newVaultFixture(t)
	author := f.createUser(t, "author", models.UserRoleAuthor)

	f.registerPrompt(t, author.ID, "dup-prompt", 0)

	_, err := f.prompts.Register(author.ID, RegisterPromptInput{
		PromptID:    "dup-prompt",
		MetadataURI: "ipfs://other",
		Version:     "2.0.0",
		LicenseType: models.LicenseTypePublic,
	})
	assert.ErrorIs(t, err, models.ErrPromptAlreadyExists)

	// The failed call left no trace: one record, counter at one, the
	// original metadata intact.
	state, err := f.vault.GetState()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), state.PromptCount)

	prompt, err := f.prompts.Get("dup-prompt")
	require.NoError(t, err)
	assert.Equal(t, "ipfs://dup-prompt", prompt.MetadataURI)
	assert.Equal(t, "1.0.0", prompt.CurrentVersion)
}

func TestRegisterBlockedWhenPaused(t *testing.T) {
	f := newVaultFixture(t)
	author := f.createUser(t, "author", models.UserRoleAuthor)
	f.pause(t)

	_, err := f.prompts.Register(author.ID, RegisterPromptInput{
		PromptID:    "paused-prompt",
		MetadataURI: "ipfs://paused",
		Version:     "1.0.0",
		LicenseType: models.LicenseTypePublic,
	})
	assert.ErrorIs(t, err, models.ErrVaultPaused)
}

func TestForkTakesFieldsFromRequest(t *testing.T) {
	f := newVaultFixture(t)
	author := f.createUser(t, "author", models.UserRoleAuthor)
	forker := f.createUser(t, "forker", models.UserRoleAuthor)

	_, err := f.prompts.Register(author.ID, RegisterPromptInput{
		PromptID:    "source",
		MetadataURI: "ipfs://source",
		Version:     "3.1.0",
		LicenseType: models.LicenseTypeTokenGated,
		FeeAmount:   1000,
		Royalty: &models.RoyaltyConfig{
			CreatorShareBps:   5000,
			DaoShareBps:       2500,
			ValidatorShareBps: 1500,
			BurnShareBps:      1000,
		},
		Tags: []models.Tag{{Name: "upstream", Category: "origin"}},
	})
	require.NoError(t, err)

	gate := "fork-gate"
	fork, err := f.prompts.Fork(forker.ID, "source", ForkPromptInput{
		NewPromptID: "forked",
		MetadataURI: "ipfs://forked",
		Version:     "0.1.0",
		ContentHash: "abc123",
		LicenseType: models.LicenseTypePublic,
		FeeAmount:   5,
		TokenGate:   &gate,
		Tags:        []models.Tag{{Name: "derived", Category: "origin"}},
	})
	require.NoError(t, err)

	// Everything diverges from the source per the fork request.
	assert.Equal(t, forker.ID, fork.AuthorID)
	assert.Equal(t, "ipfs://forked", fork.MetadataURI)
	assert.Equal(t, "0.1.0", fork.CurrentVersion)
	assert.Equal(t, models.LicenseTypePublic, fork.LicenseType)
	assert.Equal(t, uint64(5), fork.FeeAmount)
	require.NotNil(t, fork.TokenGate)
	assert.Equal(t, gate, *fork.TokenGate)
	require.Len(t, fork.Tags, 1)
	assert.Equal(t, "derived", fork.Tags[0].Name)
	require.Len(t, fork.RecentVersions, 1)
	assert.Equal(t, "abc123", fork.RecentVersions[0].ContentHash)

	// Statistics start fresh and the royalty split resets to the default.
	assert.Equal(t, uint64(0), fork.ExecutionStats.TotalExecutions)
	assert.Equal(t, uint8(1), fork.VersionCount)
	assert.Equal(t, models.DefaultRoyaltyConfig(), fork.RoyaltyConfig)
}

func TestForkLicenseRestrictions(t *testing.T) {
	f := newVaultFixture(t)
	author := f.createUser(t, "author", models.UserRoleAuthor)
	forker := f.createUser(t, "forker", models.UserRoleAuthor)

	register := func(id string, license models.LicenseType) {
		_, err := f.prompts.Register(author.ID, RegisterPromptInput{
			PromptID:    id,
			MetadataURI: "ipfs://" + id,
			Version:     "1.0.0",
			LicenseType: license,
		})
		require.NoError(t, err)
	}

	forkInput := func(newID string) ForkPromptInput {
		return ForkPromptInput{
			NewPromptID: newID,
			MetadataURI: "ipfs://" + newID,
			Version:     "1.0.0",
			LicenseType: models.LicenseTypePublic,
		}
	}

	register("private-src", models.LicenseTypePrivate)
	_, err := f.prompts.Fork(forker.ID, "private-src", forkInput("private-fork"))
	assert.ErrorIs(t, err, models.ErrForkNotAllowed)

	// Only private sources refuse forking; custom-licensed ones allow it.
	register("custom-src", models.LicenseTypeCustom)
	_, err = f.prompts.Fork(forker.ID, "custom-src", forkInput("custom-fork"))
	assert.NoError(t, err)

	register("own-src", models.LicenseTypePublic)
	_, err = f.prompts.Fork(author.ID, "own-src", forkInput("own-fork"))
	assert.ErrorIs(t, err, models.ErrCannotForkOwnPrompt)
}
