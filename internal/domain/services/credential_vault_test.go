package services

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMasterKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func TestVaultRoundTrip(t *testing.T) {
	vault := NewCredentialVault(testMasterKey)
	require.True(t, vault.Configured())

	blob, err := vault.Encrypt("sk-user-api-key")
	require.NoError(t, err)

	plaintext, err := vault.Decrypt(blob)
	require.NoError(t, err)
	assert.Equal(t, "sk-user-api-key", plaintext)
}

func TestVaultNonHexKeyIsPadded(t *testing.T) {
	vault := NewCredentialVault("short-passphrase")
	require.True(t, vault.Configured())

	blob, err := vault.Encrypt("secret")
	require.NoError(t, err)

	plaintext, err := vault.Decrypt(blob)
	require.NoError(t, err)
	assert.Equal(t, "secret", plaintext)
}

func TestVaultFreshNoncePerEncrypt(t *testing.T) {
	vault := NewCredentialVault(testMasterKey)

	first, err := vault.Encrypt("same-plaintext")
	require.NoError(t, err)
	second, err := vault.Encrypt("same-plaintext")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestVaultBlobFormat(t *testing.T) {
	vault := NewCredentialVault(testMasterKey)

	encoded, err := vault.Encrypt("secret")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)

	var blob struct {
		Encrypted string `json:"encrypted"`
		IV        string `json:"iv"`
		Tag       string `json:"tag"`
	}
	require.NoError(t, json.Unmarshal(raw, &blob))
	assert.Len(t, blob.IV, 24)  // 12-byte nonce, hex
	assert.Len(t, blob.Tag, 32) // 16-byte tag, hex
	assert.NotEmpty(t, blob.Encrypted)
}

func TestVaultDecryptTamperedBlob(t *testing.T) {
	vault := NewCredentialVault(testMasterKey)

	encoded, err := vault.Encrypt("secret")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)

	var blob map[string]string
	require.NoError(t, json.Unmarshal(raw, &blob))
	blob["tag"] = strings.Repeat("00", 16)

	tampered, err := json.Marshal(blob)
	require.NoError(t, err)

	_, err = vault.Decrypt(base64.StdEncoding.EncodeToString(tampered))

	var integrityErr *IntegrityError
	require.Error(t, err)
	assert.True(t, errors.As(err, &integrityErr))
}

func TestVaultDecryptWrongKey(t *testing.T) {
	blob, err := NewCredentialVault(testMasterKey).Encrypt("secret")
	require.NoError(t, err)

	other := NewCredentialVault(strings.Repeat("ff", 32))
	_, err = other.Decrypt(blob)

	var integrityErr *IntegrityError
	require.Error(t, err)
	assert.True(t, errors.As(err, &integrityErr))
}

func TestVaultDecryptMalformedInput(t *testing.T) {
	vault := NewCredentialVault(testMasterKey)

	for _, input := range []string{
		"not*base64*at*all",
		base64.StdEncoding.EncodeToString([]byte("not json")),
		base64.StdEncoding.EncodeToString([]byte(`{"encrypted":"zz","iv":"zz","tag":"zz"}`)),
	} {
		_, err := vault.Decrypt(input)

		var integrityErr *IntegrityError
		require.Error(t, err, input)
		assert.True(t, errors.As(err, &integrityErr), input)
	}
}

func TestVaultUnconfigured(t *testing.T) {
	vault := NewCredentialVault("")
	assert.False(t, vault.Configured())

	var configErr *ConfigurationError

	_, err := vault.Encrypt("secret")
	require.Error(t, err)
	assert.True(t, errors.As(err, &configErr))

	_, err = vault.Decrypt("anything")
	require.Error(t, err)
	assert.True(t, errors.As(err, &configErr))
}
