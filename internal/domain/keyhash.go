package domain

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"
)

// KeyHash identifies an endpoint. It is an opaque hash: only equality and
// ordering are meaningful.
type KeyHash []byte

const keyHashPrefix = "0x"

func (k KeyHash) IsEmpty() bool { return len(k) == 0 }

func (k KeyHash) Equal(other KeyHash) bool { return bytes.Equal(k, other) }

func (k KeyHash) Compare(other KeyHash) int { return bytes.Compare(k, other) }

// String renders the hash as 0x-prefixed lowercase hex.
func (k KeyHash) String() string {
	return keyHashPrefix + hex.EncodeToString(k)
}

func (k KeyHash) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *KeyHash) UnmarshalText(text []byte) error {
	parsed, err := ParseKeyHash(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKeyHash accepts the hex form with or without the 0x prefix.
func ParseKeyHash(s string) (KeyHash, error) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), keyHashPrefix)
	if s == "" {
		return nil, fmt.Errorf("empty key hash: %w", ErrBadRequest)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid key hash %q: %w", s, ErrBadRequest)
	}
	return KeyHash(b), nil
}
