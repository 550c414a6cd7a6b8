package services

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
)

const gcmTagSize = 16

var hexKeyRegex = regexp.MustCompile(`^[0-9a-fA-F]{64}$`)

// encryptedBlob is the at-rest wire format: hex-encoded nonce, ciphertext and
// authentication tag wrapped in JSON and base64'd as a single column value.
type encryptedBlob struct {
	Encrypted string `json:"encrypted"`
	IV        string `json:"iv"`
	Tag       string `json:"tag"`
}

// CredentialVault encrypts and decrypts per-user bring-your-own API keys with
// a single process-wide master key. It is a pure transform; it holds no state
// beyond the key material.
type CredentialVault struct {
	key []byte
}

// NewCredentialVault accepts the master key as configured. A 64-character hex
// string is decoded to its 32 raw bytes; any other non-empty value is padded
// or truncated to 32 bytes. An empty key yields a vault whose operations fail
// with ConfigurationError at call time.
func NewCredentialVault(masterKey string) *CredentialVault {
	if masterKey == "" {
		return &CredentialVault{}
	}
	if hexKeyRegex.MatchString(masterKey) {
		key, err := hex.DecodeString(masterKey)
		if err == nil {
			return &CredentialVault{key: key}
		}
	}
	key := make([]byte, 32)
	copy(key, []byte(masterKey))
	for i := len(masterKey); i < 32; i++ {
		key[i] = '0'
	}
	return &CredentialVault{key: key}
}

func (v *CredentialVault) Configured() bool {
	return len(v.key) == 32
}

func (v *CredentialVault) Encrypt(plaintext string) (string, error) {
	if !v.Configured() {
		return "", &ConfigurationError{Message: "server encryption key not configured"}
	}

	block, err := aes.NewCipher(v.key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, aesgcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := aesgcm.Seal(nil, nonce, []byte(plaintext), nil)
	ciphertext := sealed[:len(sealed)-gcmTagSize]
	tag := sealed[len(sealed)-gcmTagSize:]

	blob := encryptedBlob{
		Encrypted: hex.EncodeToString(ciphertext),
		IV:        hex.EncodeToString(nonce),
		Tag:       hex.EncodeToString(tag),
	}

	raw, err := json.Marshal(blob)
	if err != nil {
		return "", fmt.Errorf("failed to marshal blob: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Decrypt returns the plaintext credential or an IntegrityError when the blob
// is malformed or its authentication tag does not verify.
func (v *CredentialVault) Decrypt(encoded string) (string, error) {
	if !v.Configured() {
		return "", &ConfigurationError{Message: "server encryption key not configured"}
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", &IntegrityError{Reason: "blob is not valid base64"}
	}

	var blob encryptedBlob
	if err := json.Unmarshal(raw, &blob); err != nil {
		return "", &IntegrityError{Reason: "blob envelope is malformed"}
	}

	nonce, err := hex.DecodeString(blob.IV)
	if err != nil {
		return "", &IntegrityError{Reason: "nonce is malformed"}
	}
	ciphertext, err := hex.DecodeString(blob.Encrypted)
	if err != nil {
		return "", &IntegrityError{Reason: "ciphertext is malformed"}
	}
	tag, err := hex.DecodeString(blob.Tag)
	if err != nil {
		return "", &IntegrityError{Reason: "tag is malformed"}
	}

	block, err := aes.NewCipher(v.key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to create GCM: %w", err)
	}
	if len(nonce) != aesgcm.NonceSize() {
		return "", &IntegrityError{Reason: "nonce has wrong length"}
	}

	plaintext, err := aesgcm.Open(nil, nonce, append(ciphertext, tag...), nil)
	if err != nil {
		return "", &IntegrityError{Reason: "authentication failed"}
	}
	return string(plaintext), nil
}
