// Package cryptox holds the primitives used to protect data at rest on the
// device: argon2id key derivation and AES-GCM sealing.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"

	"golang.org/x/crypto/argon2"
)

// KeySize is the length of keys produced by DeriveKey (AES-256).
const KeySize = 32

var ErrInvalidKey = errors.New("invalid key size")

// DeriveKey stretches secret with salt into a KeySize-byte key.
func DeriveKey(secret []byte, salt []byte) []byte {
	return argon2.IDKey(secret, salt, 1, 64*1024, 4, KeySize)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Seal encrypts plaintext with AES-GCM under key. A fresh random nonce is
// generated per call and returned alongside the ciphertext. additional is
// authenticated but not encrypted; pass the storage key so that a sealed
// value cannot be swapped between slots.
func Seal(key, plaintext, additional []byte) (ciphertext, nonce []byte, err error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}

	nonce = make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, err
	}

	return aead.Seal(nil, nonce, plaintext, additional), nonce, nil
}

// Open reverses Seal.
func Open(key, ciphertext, nonce, additional []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	return aead.Open(nil, nonce, ciphertext, additional)
}

// SealJSON serializes v to JSON and seals it.
func SealJSON(key []byte, v any, additional []byte) (ciphertext, nonce []byte, err error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return nil, nil, err
	}
	return Seal(key, plaintext, additional)
}

// OpenJSON opens ciphertext and unmarshals the JSON payload into v.
func OpenJSON(key, ciphertext, nonce, additional []byte, v any) error {
	plaintext, err := Open(key, ciphertext, nonce, additional)
	if err != nil {
		return err
	}
	return json.Unmarshal(plaintext, v)
}
