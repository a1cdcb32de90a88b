package crypt

import (
	"bytes"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/solatis/typecodec/internal/codec"
)

func zeroKey() []byte { return make([]byte, KeySize) }

// TestEncryptDecryptRoundTrip_S5 mirrors spec scenario S5: an all-zero
// 32-byte key round-trips plaintext, and decrypting under a different
// key fails with DecodeFailure rather than silently returning garbage.
func TestEncryptDecryptRoundTrip_S5(t *testing.T) {
	key := zeroKey()
	plaintext := []byte("the quick brown fox")

	row := codec.Row{}
	if err := Encrypt(row, "secret", plaintext, key, "Test"); err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	got, err := Decrypt(row, "secret", key, "Test")
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("Decrypt() = %q, want %q", got, plaintext)
	}

	wrongKey := make([]byte, KeySize)
	wrongKey[0] = 1
	if _, err := Decrypt(row, "secret", wrongKey, "Test"); err == nil {
		t.Fatal("expected decrypt under wrong key to fail")
	}
}

func TestEncryptRejectsWrongKeySize(t *testing.T) {
	row := codec.Row{}
	if err := Encrypt(row, "secret", []byte("x"), []byte("too-short"), "Test"); err == nil {
		t.Fatal("expected FormatInvalid for wrong key size")
	}
}

func TestEncryptRejectsOversizedPlaintext(t *testing.T) {
	row := codec.Row{}
	key := zeroKey()
	payload := make([]byte, MaxPlaintext+1)
	if err := Encrypt(row, "secret", payload, key, "Test"); err == nil {
		t.Fatal("expected SizeExceeded for oversized plaintext")
	}
}

func TestDecryptRejectsTruncatedEnvelope(t *testing.T) {
	row := codec.Row{
		"__bufchunks_secret": float64(1),
		"__buf0_secret":      "AAAA",
	}
	if _, err := Decrypt(row, "secret", zeroKey(), "Test"); err == nil {
		t.Fatal("expected DecodeFailure for truncated envelope")
	}
}

// TestEncrypt_NonDeterministic drives spec §8 item 4: two independent
// encryptions of the same plaintext under the same key differ in
// ciphertext (fresh random IV each time), with high probability.
func TestEncrypt_NonDeterministic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	properties.Property("two encryptions of the same plaintext differ", prop.ForAll(
		func(plaintext string) bool {
			key := zeroKey()
			row1 := codec.Row{}
			row2 := codec.Row{}
			if err := Encrypt(row1, "p", []byte(plaintext), key, "Test"); err != nil {
				return false
			}
			if err := Encrypt(row2, "p", []byte(plaintext), key, "Test"); err != nil {
				return false
			}
			return row1["__buf0_p"] != row2["__buf0_p"]
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

func TestEncryptDecrypt_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("round trip preserves arbitrary payloads", prop.ForAll(
		func(payload []byte) bool {
			key := zeroKey()
			row := codec.Row{}
			if err := Encrypt(row, "p", payload, key, "Test"); err != nil {
				return false
			}
			got, err := Decrypt(row, "p", key, "Test")
			if err != nil {
				return false
			}
			return bytes.Equal(got, payload)
		},
		gen.SliceOf(gen.UInt8Range(0, 255)),
	))

	properties.TestingRun(t)
}
