// Package secrets provides symmetric encryption for sensitive setting
// values. Values are encrypted with AES-256-CBC under a random IV per call
// and stored as "ivhex:cipherhex".
package secrets

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"duka/internal/apperrors"
)

// Cipher encrypts and decrypts strings under a fixed 32-byte key.
type Cipher struct {
	key []byte
}

// NewCipher creates a Cipher from a hex-encoded 32-byte key.
func NewCipher(hexKey string) (*Cipher, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode encryption key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(key))
	}
	return &Cipher{key: key}, nil
}

// Encrypt encrypts plaintext and returns "ivhex:cipherhex". A fresh random
// IV is drawn on every call, so encrypting the same value twice yields
// different outputs.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", &apperrors.EncryptionError{Reason: err.Error()}
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", &apperrors.EncryptionError{Reason: fmt.Sprintf("failed to generate IV: %v", err)}
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(ciphertext), nil
}

// Decrypt reverses Encrypt. Any malformed input (missing ':' separator, bad
// hex, short IV, ragged ciphertext, bad padding) fails with a DecryptionError.
func (c *Cipher) Decrypt(value string) (string, error) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return "", &apperrors.DecryptionError{Reason: "missing iv separator"}
	}

	iv, err := hex.DecodeString(parts[0])
	if err != nil {
		return "", &apperrors.DecryptionError{Reason: "invalid iv encoding"}
	}
	if len(iv) != aes.BlockSize {
		return "", &apperrors.DecryptionError{Reason: fmt.Sprintf("iv must be %d bytes, got %d", aes.BlockSize, len(iv))}
	}

	ciphertext, err := hex.DecodeString(parts[1])
	if err != nil {
		return "", &apperrors.DecryptionError{Reason: "invalid ciphertext encoding"}
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", &apperrors.DecryptionError{Reason: "ciphertext is not a whole number of blocks"}
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", &apperrors.DecryptionError{Reason: err.Error()}
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	unpadded, err := pkcs7Unpad(plaintext, aes.BlockSize)
	if err != nil {
		return "", &apperrors.DecryptionError{Reason: err.Error()}
	}
	return string(unpadded), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(padding)}, padding)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("invalid padded length %d", len(data))
	}
	padding := int(data[len(data)-1])
	if padding == 0 || padding > blockSize {
		return nil, fmt.Errorf("invalid padding byte %d", padding)
	}
	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return nil, fmt.Errorf("inconsistent padding")
		}
	}
	return data[:len(data)-padding], nil
}
