// Package crypt implements the AES-256-CBC encryption envelope (spec
// §4.7): wraps a plaintext payload as IV(16) || ciphertext and writes it
// through the buffer envelope, with a fresh random IV per call.
//
// Grounded on the teacher's crypto/* stdlib usage texture in
// internal/core/auth/hmac.go (HMAC-SHA256 over raw bytes, constant-time
// comparisons) and on ssargent-freyjadb/pkg/api/system.go's
// cipher.AEAD construction pattern (aes.NewCipher then wrap with a
// cipher mode) — that repo builds a GCM AEAD; spec §4.7 specifically
// requires CBC with PKCS#7 padding, which the standard library's
// crypto/cipher exposes directly (cipher.NewCBCEncrypter/Decrypter), so
// no third-party crypto library is introduced for this concern.
package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"github.com/solatis/typecodec/internal/codec"
	"github.com/solatis/typecodec/internal/codec/buffer"
)

// KeySize is the required symmetric key length: 32 bytes (AES-256).
const KeySize = 32

// IVSize is the AES block size used as the CBC initialization vector.
const IVSize = aes.BlockSize // 16

// MaxPlaintext is the largest plaintext payload this envelope accepts:
// 256 KiB minus 32 bytes reserved for IV and padding headroom, per spec
// §3 and §6.
const MaxPlaintext = buffer.MaxPayload - 32

// Encrypt pads plaintext with PKCS#7, encrypts it under key (AES-256-CBC)
// behind a fresh random 16-byte IV, and writes IV||ciphertext through
// the buffer envelope for property.
func Encrypt(row codec.Row, property string, plaintext []byte, key []byte, typeName string) error {
	if len(key) != KeySize {
		return codec.NewError(codec.FormatInvalid, typeName, property,
			fmt.Errorf("key must be %d bytes, got %d", KeySize, len(key)))
	}
	if len(plaintext) > MaxPlaintext {
		return codec.NewError(codec.SizeExceeded, typeName, property,
			fmt.Errorf("plaintext is %d bytes, exceeds %d byte limit", len(plaintext), MaxPlaintext))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return codec.NewError(codec.FormatInvalid, typeName, property, err)
	}

	iv := make([]byte, IVSize)
	if _, err := rand.Read(iv); err != nil {
		return codec.NewError(codec.DecodeFailure, typeName, property, fmt.Errorf("failed to draw IV: %w", err))
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	mode := cipher.NewCBCEncrypter(block, iv)
	mode.CryptBlocks(ciphertext, padded)

	payload := make([]byte, 0, IVSize+len(ciphertext))
	payload = append(payload, iv...)
	payload = append(payload, ciphertext...)

	return buffer.Write(row, property, payload, typeName)
}

// Decrypt reads the envelope for property, splits off the leading 16-byte
// IV, decrypts the remainder under key, and strips PKCS#7 padding.
func Decrypt(row codec.Row, property string, key []byte, typeName string) ([]byte, error) {
	if len(key) != KeySize {
		return nil, codec.NewError(codec.FormatInvalid, typeName, property,
			fmt.Errorf("key must be %d bytes, got %d", KeySize, len(key)))
	}

	payload, err := buffer.Read(row, property, typeName)
	if err != nil {
		return nil, err
	}
	if len(payload) < IVSize+aes.BlockSize {
		return nil, codec.NewError(codec.DecodeFailure, typeName, property,
			fmt.Errorf("envelope payload too short to contain IV and ciphertext"))
	}

	iv := payload[:IVSize]
	ciphertext := payload[IVSize:]
	if len(ciphertext)%aes.BlockSize != 0 {
		return nil, codec.NewError(codec.DecodeFailure, typeName, property,
			fmt.Errorf("ciphertext length %d is not a multiple of the block size", len(ciphertext)))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, codec.NewError(codec.FormatInvalid, typeName, property, err)
	}

	plaintextPadded := make([]byte, len(ciphertext))
	mode := cipher.NewCBCDecrypter(block, iv)
	mode.CryptBlocks(plaintextPadded, ciphertext)

	plaintext, err := pkcs7Unpad(plaintextPadded, aes.BlockSize)
	if err != nil {
		return nil, codec.NewError(codec.DecodeFailure, typeName, property, err)
	}
	return plaintext, nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("invalid padded data length %d", len(data))
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize || padLen > len(data) {
		return nil, fmt.Errorf("invalid PKCS#7 padding length %d", padLen)
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, fmt.Errorf("invalid PKCS#7 padding bytes")
		}
	}
	return data[:len(data)-padLen], nil
}
