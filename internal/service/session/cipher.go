package session

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/sandevgo/wishbot/internal/core"
)

const (
	secretSize = 32
	keySize    = 32
	blobSep    = ":"
)

// Cipher is the process-wide encryption context for history blobs. The secret
// is generated at construction and never persisted, so blobs written by a
// previous process cannot be decrypted by a new one.
//
// Blob format: hex(iv) ":" hex(AES-256-CBC(PKCS#7(json))).
type Cipher struct {
	block cipher.Block
	rand  io.Reader
}

// NewCipher creates a context keyed by a fresh random secret.
func NewCipher() (*Cipher, error) {
	raw := make([]byte, secretSize)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}
	return NewCipherFromSecret(base64.StdEncoding.EncodeToString(raw))
}

// NewCipherFromSecret derives the key as the first 32 characters of the
// base64-encoded SHA-256 of secret. The truncation keeps blobs compatible
// with the established format at the cost of key entropy.
func NewCipherFromSecret(secret string) (*Cipher, error) {
	sum := sha256.Sum256([]byte(secret))
	key := []byte(base64.StdEncoding.EncodeToString(sum[:])[:keySize])

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init aes: %w", err)
	}
	return &Cipher{block: block, rand: rand.Reader}, nil
}

func (c *Cipher) Encrypt(plaintext []byte) (string, error) {
	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(c.rand, iv); err != nil {
		return "", fmt.Errorf("generate iv: %w", err)
	}

	data := pad(plaintext, aes.BlockSize)
	out := make([]byte, len(data))
	cipher.NewCBCEncrypter(c.block, iv).CryptBlocks(out, data)

	return hex.EncodeToString(iv) + blobSep + hex.EncodeToString(out), nil
}

func (c *Cipher) Decrypt(blob string) ([]byte, error) {
	parts := strings.Split(strings.TrimSpace(blob), blobSep)
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: expected 2 segments, got %d", core.ErrMalformedBlob, len(parts))
	}

	iv, err := hex.DecodeString(parts[0])
	if err != nil || len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("%w: bad iv", core.ErrMalformedBlob)
	}

	data, err := hex.DecodeString(parts[1])
	if err != nil || len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: bad ciphertext", core.ErrMalformedBlob)
	}

	out := make([]byte, len(data))
	cipher.NewCBCDecrypter(c.block, iv).CryptBlocks(out, data)

	plain, err := unpad(out, aes.BlockSize)
	if err != nil {
		return nil, err
	}
	return plain, nil
}

func pad(data []byte, size int) []byte {
	n := size - len(data)%size
	return append(bytes.Clone(data), bytes.Repeat([]byte{byte(n)}, n)...)
}

// unpad fails on a wrong key with high probability, which is how a blob from
// a previous process is detected.
func unpad(data []byte, size int) ([]byte, error) {
	if len(data) == 0 || len(data)%size != 0 {
		return nil, fmt.Errorf("%w: bad block length", core.ErrMalformedBlob)
	}
	n := int(data[len(data)-1])
	if n == 0 || n > size {
		return nil, fmt.Errorf("%w: bad padding", core.ErrMalformedBlob)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("%w: bad padding", core.ErrMalformedBlob)
		}
	}
	return data[:len(data)-n], nil
}
