package topiccrypt

import (
	"errors"
	"testing"

	"ai-studyroom-be/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundtrip(t *testing.T) {
	gw := NewGateway("master-secret")
	key, err := GenerateKeyMaterial()
	require.NoError(t, err)

	tests := []struct {
		name      string
		plaintext string
	}{
		{name: "simple", plaintext: "hello"},
		{name: "empty", plaintext: ""},
		{name: "unicode", plaintext: "héllo wörld 日本語"},
		{name: "contains separator", plaintext: "a:b:c"},
		{name: "long", plaintext: string(make([]byte, 4096))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ct, err := gw.Encrypt(key, "topic-1", tt.plaintext)
			require.NoError(t, err)
			assert.NotEqual(t, tt.plaintext, ct)

			pt, err := gw.Decrypt(key, "topic-1", ct)
			require.NoError(t, err)
			assert.Equal(t, tt.plaintext, pt)
		})
	}
}

func TestDecryptWithWrongKey(t *testing.T) {
	gw := NewGateway("master-secret")
	key1, _ := GenerateKeyMaterial()
	key2, _ := GenerateKeyMaterial()

	ct, err := gw.Encrypt(key1, "topic-1", "secret message")
	require.NoError(t, err)

	_, err = gw.Decrypt(key2, "topic-1", ct)
	assert.True(t, errors.Is(err, apperr.ErrDecrypt))
}

func TestDecryptReplayedIntoWrongTopic(t *testing.T) {
	gw := NewGateway("master-secret")
	key, _ := GenerateKeyMaterial()

	ct, err := gw.Encrypt(key, "topic-1", "secret message")
	require.NoError(t, err)

	// Same key material, different topic id: derivation differs, open fails.
	_, err = gw.Decrypt(key, "topic-2", ct)
	assert.True(t, errors.Is(err, apperr.ErrDecrypt))
}

func TestDecryptMalformedInput(t *testing.T) {
	gw := NewGateway("master-secret")
	key, _ := GenerateKeyMaterial()

	tests := []struct {
		name       string
		ciphertext string
	}{
		{name: "not base64", ciphertext: "%%% not base64 %%%"},
		{name: "empty", ciphertext: ""},
		{name: "valid base64 garbage", ciphertext: "aGVsbG8gd29ybGQ="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gw.Decrypt(key, "topic-1", tt.ciphertext)
			assert.True(t, errors.Is(err, apperr.ErrDecrypt))
		})
	}
}

func TestDifferentMasterKeys(t *testing.T) {
	key, _ := GenerateKeyMaterial()

	ct, err := NewGateway("master-a").Encrypt(key, "topic-1", "hello")
	require.NoError(t, err)

	_, err = NewGateway("master-b").Decrypt(key, "topic-1", ct)
	assert.True(t, errors.Is(err, apperr.ErrDecrypt))
}

func TestRoomPassword(t *testing.T) {
	hash, err := HashRoomPassword("letmein")
	require.NoError(t, err)
	assert.True(t, VerifyRoomPassword("letmein", hash))
	assert.False(t, VerifyRoomPassword("wrong", hash))
}
