package builtins

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/zeebo/blake3"
)

// Character set for random strings
const alphaNum = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Hashing

func tmplSHA256(v any) string {
	h := sha256.Sum256([]byte(tmplToString(v)))
	return hex.EncodeToString(h[:])
}

func tmplSHA512(v any) string {
	h := sha512.Sum512([]byte(tmplToString(v)))
	return hex.EncodeToString(h[:])
}

func tmplBLAKE3(v any) string {
	h := blake3.Sum256([]byte(tmplToString(v)))
	return hex.EncodeToString(h[:])
}

// tmplHash hashes v with the named algorithm: {{ hash "sha384" .secret }}.
func tmplHash(algorithm string, v any) (string, error) {
	data := []byte(tmplToString(v))

	var result []byte
	switch strings.ToLower(algorithm) {
	case "sha256":
		h := sha256.Sum256(data)
		result = h[:]
	case "sha384":
		h := sha512.Sum384(data)
		result = h[:]
	case "sha512":
		h := sha512.Sum512(data)
		result = h[:]
	case "blake3":
		h := blake3.Sum256(data)
		result = h[:]
	default:
		return "", fmt.Errorf("hash: unsupported algorithm %q", algorithm)
	}

	return hex.EncodeToString(result), nil
}

// Encoding

func tmplBase64Encode(v any) string {
	return base64.StdEncoding.EncodeToString([]byte(tmplToString(v)))
}

func tmplBase64Decode(s string) (string, error) {
	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		// Try URL-safe encoding
		decoded, err = base64.URLEncoding.DecodeString(s)
		if err != nil {
			return "", fmt.Errorf("b64dec: %w", err)
		}
	}
	return string(decoded), nil
}

func tmplHexEncode(v any) string {
	return hex.EncodeToString([]byte(tmplToString(v)))
}

func tmplHexDecode(s string) (string, error) {
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("hexdec: %w", err)
	}
	return string(decoded), nil
}

// Random strings

func tmplRandAlphaNum(length int) (string, error) {
	if length < 1 {
		return "", fmt.Errorf("randAlphaNum: length must be at least 1")
	}

	max := big.NewInt(int64(len(alphaNum)))
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("randAlphaNum: %w", err)
		}
		result[i] = alphaNum[n.Int64()]
	}
	return string(result), nil
}
