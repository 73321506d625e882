// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"bytes"
	"errors"
	"testing"
)

func TestSealer_RoundTrip(t *testing.T) {
	s, err := NewSealer(testSecret)
	if err != nil {
		t.Fatalf("NewSealer: %v", err)
	}

	plain := []byte(`{"Token":"abc"}`)
	sealed, err := s.Seal(plain)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if bytes.Contains(sealed, plain) {
		t.Error("sealed value contains plaintext")
	}

	again, _ := s.Seal(plain)
	if bytes.Equal(sealed, again) {
		t.Error("two seals of the same value are identical")
	}

	got, err := s.Open(sealed)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !bytes.Equal(got, plain) {
		t.Errorf("Open() = %q, want %q", got, plain)
	}
}

func TestSealer_Open_Rejects(t *testing.T) {
	s, _ := NewSealer(testSecret)
	other, _ := NewSealer("another-secret-key-32-bytes-long")

	sealed, _ := s.Seal([]byte("value"))
	tampered := append([]byte(nil), sealed...)
	tampered[len(tampered)-1] ^= 0xff

	tests := []struct {
		name  string
		open  func([]byte) ([]byte, error)
		input []byte
	}{
		{"tampered", s.Open, tampered},
		{"other secret", other.Open, sealed},
		{"too short", s.Open, []byte("short")},
		{"empty", s.Open, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.open(tt.input); !errors.Is(err, ErrUnsealFailed) {
				t.Errorf("Open() error = %v, want ErrUnsealFailed", err)
			}
		})
	}
}

func TestNewSealer_EmptySecret(t *testing.T) {
	if _, err := NewSealer(""); err == nil {
		t.Error("NewSealer(\"\") should fail")
	}
}
