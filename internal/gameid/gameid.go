package gameid

import (
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Base32 alphabet used by TypeID (Crockford's base32)
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Typed ID prefixes. IDs sort by creation time within a prefix because the
// underlying UUIDv7 is time-ordered.
const (
	PrefixTable      = "tbl"
	PrefixHand       = "hnd"
	PrefixTournament = "trn"
)

// New creates a typed ID: prefix + "_" + 26-character base32 UUIDv7
func New(prefix string) string {
	id := uuid.Must(uuid.NewV7())
	return prefix + "_" + encodeBase32(id)
}

// NewTable returns a fresh table ID
func NewTable() string { return New(PrefixTable) }

// NewHand returns a fresh hand ID
func NewHand() string { return New(PrefixHand) }

// NewTournament returns a fresh tournament ID
func NewTournament() string { return New(PrefixTournament) }

// encodeBase32 encodes a 128-bit UUID as a 26-character base32 string
func encodeBase32(data [16]byte) string {
	result := make([]byte, 26)

	// Encode 5 bits per character, most significant bits first
	for i := 0; i < 26; i++ {
		bitOffset := i * 5
		byteIndex := bitOffset / 8
		bitIndex := bitOffset % 8

		var value uint8
		if byteIndex < 16 {
			if bitIndex <= 3 {
				value = (data[byteIndex] >> (3 - bitIndex)) & 0x1f
			} else {
				value = (data[byteIndex] << (bitIndex - 3)) & 0x1f
				if byteIndex+1 < 16 {
					value |= data[byteIndex+1] >> (11 - bitIndex)
				}
			}
		}
		result[i] = alphabet[value]
	}

	return string(result)
}

// Validate checks a typed ID: known prefix, underscore, 26 valid base32 chars
func Validate(id string) error {
	prefix, rest, ok := strings.Cut(id, "_")
	if !ok {
		return fmt.Errorf("id missing prefix separator")
	}
	switch prefix {
	case PrefixTable, PrefixHand, PrefixTournament:
	default:
		return fmt.Errorf("unknown id prefix %q", prefix)
	}
	if len(rest) != 26 {
		return fmt.Errorf("id body must be exactly 26 characters, got %d", len(rest))
	}
	if rest[0] > '7' {
		return fmt.Errorf("id body first character must be 0-7, got %c", rest[0])
	}
	for i, char := range rest {
		if !strings.ContainsRune(alphabet, char) {
			return fmt.Errorf("invalid character %c at position %d", char, i)
		}
	}
	return nil
}

// Join code alphabet: uppercase letters and digits, no exclusions
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// CodeLength is the fixed join code length for private tables
const CodeLength = 5

// NewJoinCode returns a random 5-character private table join code
func NewJoinCode() string {
	var buf [CodeLength]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic("gameid: read random bytes: " + err.Error())
	}
	for i := range buf {
		buf[i] = codeAlphabet[int(buf[i])%len(codeAlphabet)]
	}
	return string(buf[:])
}

// NormalizeJoinCode upper-cases input for case-insensitive lookup and
// validates the format
func NormalizeJoinCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != CodeLength {
		return "", fmt.Errorf("join code must be %d characters", CodeLength)
	}
	for _, c := range code {
		if !strings.ContainsRune(codeAlphabet, c) {
			return "", fmt.Errorf("join code contains invalid character %q", c)
		}
	}
	return code, nil
}
