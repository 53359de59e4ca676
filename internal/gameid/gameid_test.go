package gameid

import (
	"strings"
	"testing"
)

func TestNewProducesValidIDs(t *testing.T) {
	for _, prefix := range []string{PrefixTable, PrefixHand, PrefixTournament} {
		id := New(prefix)
		if !strings.HasPrefix(id, prefix+"_") {
			t.Errorf("New(%q) = %q, missing prefix", prefix, id)
		}
		if err := Validate(id); err != nil {
			t.Errorf("Validate(%q) = %v", id, err)
		}
	}
}

func TestConstructorsUseTheirPrefix(t *testing.T) {
	if id := NewTable(); !strings.HasPrefix(id, "tbl_") {
		t.Errorf("NewTable() = %q", id)
	}
	if id := NewHand(); !strings.HasPrefix(id, "hnd_") {
		t.Errorf("NewHand() = %q", id)
	}
	if id := NewTournament(); !strings.HasPrefix(id, "trn_") {
		t.Errorf("NewTournament() = %q", id)
	}
}

func TestIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewTable()
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestValidateRejectsMalformedIDs(t *testing.T) {
	cases := []struct {
		name string
		id   string
	}{
		{"no separator", "tbl0123456789abcdefghjkmnpqrst"},
		{"unknown prefix", "usr_01h455vb4pex5vsknk084sn02q"},
		{"too short", "tbl_01h455vb4pex5vsknk084sn02"},
		{"too long", "tbl_01h455vb4pex5vsknk084sn02qq"},
		{"first char out of range", "tbl_81h455vb4pex5vsknk084sn02q"},
		{"invalid character", "tbl_01h455vb4pex5vsknk084sn02u"},
		{"uppercase body", "tbl_01H455VB4PEX5VSKNK084SN02Q"},
		{"empty", ""},
	}
	for _, tc := range cases {
		if err := Validate(tc.id); err == nil {
			t.Errorf("%s: Validate(%q) accepted", tc.name, tc.id)
		}
	}
}

func TestNewJoinCodeFormat(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := NewJoinCode()
		if len(code) != CodeLength {
			t.Fatalf("NewJoinCode() = %q, want %d characters", code, CodeLength)
		}
		for _, c := range code {
			if !strings.ContainsRune(codeAlphabet, c) {
				t.Fatalf("NewJoinCode() = %q, invalid character %q", code, c)
			}
		}
	}
}

func TestNormalizeJoinCode(t *testing.T) {
	got, err := NormalizeJoinCode("  ab1cd ")
	if err != nil {
		t.Fatalf("NormalizeJoinCode: %v", err)
	}
	if got != "AB1CD" {
		t.Errorf("NormalizeJoinCode = %q, want AB1CD", got)
	}

	for _, bad := range []string{"", "ABCD", "ABCDEF", "AB-CD", "AB CD1"} {
		if _, err := NormalizeJoinCode(bad); err == nil {
			t.Errorf("NormalizeJoinCode(%q) accepted", bad)
		}
	}
}
