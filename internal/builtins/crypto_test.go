package builtins

import (
	"encoding/hex"
	"strings"
	"testing"
)

func TestHashing(t *testing.T) {
	tests := []struct {
		name     string
		template string
		expected string
	}{
		{
			name:     "sha256",
			template: `{{ "hello" | sha256 }}`,
			expected: "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
		},
		{
			name:     "hash sha256",
			template: `{{ hash "sha256" "hello" }}`,
			expected: "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
		},
		{
			name:     "blake3 empty",
			template: `{{ "" | blake3 }}`,
			expected: "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262",
		},
		{
			name:     "hash blake3 matches blake3",
			template: `{{ eq (hash "blake3" "x") (blake3 "x") }}`,
			expected: "true",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := render(t, tt.template, nil)
			if err != nil {
				t.Fatalf("render failed: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestHashLengths(t *testing.T) {
	tests := []struct {
		template string
		hexLen   int
	}{
		{`{{ sha512 "x" }}`, 128},
		{`{{ hash "sha384" "x" }}`, 96},
		{`{{ hash "SHA512" "x" }}`, 128},
	}

	for _, tt := range tests {
		got, err := render(t, tt.template, nil)
		if err != nil {
			t.Fatalf("%s: render failed: %v", tt.template, err)
		}
		if len(got) != tt.hexLen {
			t.Errorf("%s: expected %d hex chars, got %d", tt.template, tt.hexLen, len(got))
		}
		if _, err := hex.DecodeString(got); err != nil {
			t.Errorf("%s: not valid hex: %v", tt.template, err)
		}
	}

	if _, err := render(t, `{{ hash "md5" "x" }}`, nil); err == nil {
		t.Error("expected error for unsupported algorithm")
	}
}

func TestEncoding(t *testing.T) {
	tests := []struct {
		template string
		expected string
	}{
		{`{{ "hello world" | b64enc }}`, "aGVsbG8gd29ybGQ="},
		{`{{ "aGVsbG8gd29ybGQ=" | b64dec }}`, "hello world"},
		{`{{ "hi" | hexenc }}`, "6869"},
		{`{{ "6869" | hexdec }}`, "hi"},
	}

	for _, tt := range tests {
		got, err := render(t, tt.template, nil)
		if err != nil {
			t.Fatalf("%s: render failed: %v", tt.template, err)
		}
		if got != tt.expected {
			t.Errorf("%s: expected %q, got %q", tt.template, tt.expected, got)
		}
	}

	if _, err := render(t, `{{ "zz" | hexdec }}`, nil); err == nil {
		t.Error("expected error for invalid hex")
	}
}

func TestRandAlphaNum(t *testing.T) {
	got, err := render(t, `{{ randAlphaNum 24 }}`, nil)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if len(got) != 24 {
		t.Errorf("expected length 24, got %d", len(got))
	}
	for _, c := range got {
		if !strings.ContainsRune(alphaNum, c) {
			t.Errorf("unexpected character %q", c)
		}
	}

	if _, err := render(t, `{{ randAlphaNum 0 }}`, nil); err == nil {
		t.Error("expected error for zero length")
	}
}
