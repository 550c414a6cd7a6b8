package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javimosch/gutcheck-saas/internal/domain/models"
)

func newAccountFixture() (AccountService, *fakeUserRepo, *CredentialVault) {
	repo := newFakeUserRepo()
	vault := NewCredentialVault(testMasterKey)
	return NewAccountService(repo, vault), repo, vault
}

func TestFindOrCreateNewUser(t *testing.T) {
	accounts, repo, _ := newAccountFixture()

	user, err := accounts.FindOrCreate(context.Background(), "  Founder@Example.COM ", "1.2.3.4", "")
	require.NoError(t, err)

	assert.Equal(t, "founder@example.com", user.Email)
	assert.Equal(t, "1.2.3.4", user.IP)
	assert.Zero(t, user.EvaluationCount)
	assert.Len(t, repo.users, 1)
}

func TestFindOrCreateIsIdempotent(t *testing.T) {
	accounts, repo, _ := newAccountFixture()

	first, err := accounts.FindOrCreate(context.Background(), "founder@example.com", "1.2.3.4", "")
	require.NoError(t, err)

	second, err := accounts.FindOrCreate(context.Background(), "Founder@example.com", "5.6.7.8", "")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, repo.users, 1)
}

func TestFindOrCreateRejectsInvalidEmail(t *testing.T) {
	accounts, _, _ := newAccountFixture()

	_, err := accounts.FindOrCreate(context.Background(), "not-an-email", "", "")

	var validationErr *ValidationError
	require.Error(t, err)
	assert.True(t, errors.As(err, &validationErr))
}

func TestFindOrCreateStoresEncryptedByokKey(t *testing.T) {
	accounts, _, vault := newAccountFixture()

	user, err := accounts.FindOrCreate(context.Background(), "founder@example.com", "", "sk-byok")
	require.NoError(t, err)

	require.NotNil(t, user.LLMKeyEncrypted)
	assert.NotContains(t, *user.LLMKeyEncrypted, "sk-byok")

	plaintext, err := vault.Decrypt(*user.LLMKeyEncrypted)
	require.NoError(t, err)
	assert.Equal(t, "sk-byok", plaintext)
}

func TestGetByEmailUnknownUser(t *testing.T) {
	accounts, _, _ := newAccountFixture()

	_, err := accounts.GetByEmail(context.Background(), "ghost@example.com")

	var notFound *NotFoundError
	require.Error(t, err)
	assert.True(t, errors.As(err, &notFound))
}

func TestUpdateSettingsSetAndClear(t *testing.T) {
	accounts, _, _ := newAccountFixture()
	user, err := accounts.FindOrCreate(context.Background(), "founder@example.com", "", "")
	require.NoError(t, err)

	key := "sk-new"
	model := "gpt-4o"
	updated, err := accounts.UpdateSettings(context.Background(), user.ID, &UpdateSettingsRequest{
		APIKey:         &key,
		PreferredModel: &model,
	})
	require.NoError(t, err)
	assert.True(t, updated.HasKey(models.CapabilityEvaluation))
	require.NotNil(t, updated.PreferredModel)
	assert.Equal(t, "gpt-4o", *updated.PreferredModel)

	// A nil field is left untouched, an empty string clears.
	empty := ""
	updated, err = accounts.UpdateSettings(context.Background(), user.ID, &UpdateSettingsRequest{APIKey: &empty})
	require.NoError(t, err)
	assert.False(t, updated.HasKey(models.CapabilityEvaluation))
	require.NotNil(t, updated.PreferredModel)
	assert.Equal(t, "gpt-4o", *updated.PreferredModel)
}

func TestLLMKeyRoundTrip(t *testing.T) {
	accounts, _, _ := newAccountFixture()
	user, err := accounts.FindOrCreate(context.Background(), "founder@example.com", "", "sk-byok")
	require.NoError(t, err)

	key, err := accounts.LLMKey(user)
	require.NoError(t, err)
	assert.Equal(t, "sk-byok", key)
}

func TestLLMKeyAbsent(t *testing.T) {
	accounts, _, _ := newAccountFixture()
	user, err := accounts.FindOrCreate(context.Background(), "founder@example.com", "", "")
	require.NoError(t, err)

	key, err := accounts.LLMKey(user)
	require.NoError(t, err)
	assert.Empty(t, key)
}

func TestLLMKeyCorruptBlobDegradesToAbsent(t *testing.T) {
	accounts, _, _ := newAccountFixture()
	user, err := accounts.FindOrCreate(context.Background(), "founder@example.com", "", "")
	require.NoError(t, err)

	corrupt := "definitely-not-a-valid-blob"
	user.LLMKeyEncrypted = &corrupt

	key, err := accounts.LLMKey(user)
	require.NoError(t, err)
	assert.Empty(t, key)
}

func TestLLMKeyWithoutMasterKey(t *testing.T) {
	repo := newFakeUserRepo()
	accounts := NewAccountService(repo, NewCredentialVault(""))
	blob := "whatever"
	user := repo.add(&models.User{Email: "founder@example.com", LLMKeyEncrypted: &blob})

	_, err := accounts.LLMKey(user)

	var configErr *ConfigurationError
	require.Error(t, err)
	assert.True(t, errors.As(err, &configErr))
}
