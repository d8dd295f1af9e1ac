package implant

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBijective26(t *testing.T) {
	tests := []struct {
		i    int
		want string
	}{
		{0, "A"},
		{1, "B"},
		{25, "Z"},
		{26, "AA"},
		{27, "AB"},
		{51, "AZ"},
		{52, "BA"},
		{77, "BZ"},
		{701, "ZZ"},
		{702, "AAA"},
	}

	for _, tt := range tests {
		if got := Bijective26(tt.i); got != tt.want {
			t.Errorf("Bijective26(%d) = %q, want %q", tt.i, got, tt.want)
		}
	}
}

func TestAlphabeticNames(t *testing.T) {
	got := AlphabeticNames(28)
	if len(got) != 28 {
		t.Fatalf("AlphabeticNames(28) returned %d names", len(got))
	}
	if got[0] != "A" || got[25] != "Z" || got[26] != "AA" || got[27] != "AB" {
		t.Errorf("AlphabeticNames(28) rollover wrong: %v", got[24:])
	}
	if AlphabeticNames(0) != nil {
		t.Error("AlphabeticNames(0) should be nil")
	}
}

func TestAlphabeticRange(t *testing.T) {
	want := []string{"Y", "Z", "AA"}
	if diff := cmp.Diff(want, AlphabeticRange(24, 27)); diff != "" {
		t.Errorf("AlphabeticRange(24, 27) mismatch (-want +got):\n%s", diff)
	}
	if AlphabeticRange(5, 5) != nil {
		t.Error("empty range should be nil")
	}
}

func TestNumericNames(t *testing.T) {
	want := []string{"1", "2", "3"}
	if diff := cmp.Diff(want, NumericNames(3)); diff != "" {
		t.Errorf("NumericNames(3) mismatch (-want +got):\n%s", diff)
	}
	if NumericNames(0) != nil {
		t.Error("NumericNames(0) should be nil")
	}
}
