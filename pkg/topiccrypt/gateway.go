// Package topiccrypt seals chat message bodies with a per-topic symmetric key.
// Each topic gets one key at creation time and keeps it for life; the gateway
// derives the AES key from that material so the raw record value never touches
// the cipher directly.
package topiccrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"strings"

	"ai-studyroom-be/internal/apperr"

	"golang.org/x/crypto/pbkdf2"
)

const (
	keyLen     = 32
	iterations = 100_000
	envelopSep = ":"
)

// Gateway encrypts and decrypts topic-scoped messages. The master key is
// mixed into derivation so a leaked topic record alone is not enough to
// decrypt history.
type Gateway struct {
	masterKey []byte
}

func NewGateway(masterKey string) *Gateway {
	return &Gateway{masterKey: []byte(masterKey)}
}

// GenerateKeyMaterial returns fresh random key material for a new topic.
// Called once at topic creation; keys are never rotated afterwards.
func GenerateKeyMaterial() (string, error) {
	raw := make([]byte, keyLen)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(raw), nil
}

func (g *Gateway) deriveKey(topicKey, topicID string) []byte {
	secret := append([]byte(topicKey), g.masterKey...)
	return pbkdf2.Key(secret, []byte(topicID), iterations, keyLen, sha256.New)
}

func (g *Gateway) aead(topicKey, topicID string) (cipher.AEAD, error) {
	block, err := aes.NewCipher(g.deriveKey(topicKey, topicID))
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Encrypt seals plaintext under the topic key. The topic id is embedded in
// the envelope before sealing so a ciphertext replayed into another topic is
// rejected at decrypt time even if the keys happened to collide.
func (g *Gateway) Encrypt(topicKey, topicID, plaintext string) (string, error) {
	aead, err := g.aead(topicKey, topicID)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	envelope := topicID + envelopSep + plaintext
	sealed := aead.Seal(nonce, nonce, []byte(envelope), nil)
	return base64.URLEncoding.EncodeToString(sealed), nil
}

// Decrypt opens ciphertext and verifies the embedded topic tag. Every failure
// mode (bad base64, cipher error, tag mismatch) classifies as ErrDecrypt so
// callers drop the message and answer the sender only.
func (g *Gateway) Decrypt(topicKey, topicID, ciphertext string) (string, error) {
	raw, err := base64.URLEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", apperr.Wrap(apperr.ErrDecrypt, err)
	}

	aead, err := g.aead(topicKey, topicID)
	if err != nil {
		return "", apperr.Wrap(apperr.ErrDecrypt, err)
	}

	if len(raw) < aead.NonceSize() {
		return "", apperr.Wrapf(apperr.ErrDecrypt, "ciphertext shorter than nonce")
	}

	nonce, sealed := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	opened, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", apperr.Wrap(apperr.ErrDecrypt, err)
	}

	envelope := string(opened)
	tag, plaintext, found := strings.Cut(envelope, envelopSep)
	if !found || tag != topicID {
		return "", apperr.Wrapf(apperr.ErrDecrypt, "topic tag mismatch")
	}
	return plaintext, nil
}
