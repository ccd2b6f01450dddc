package genotypes

import "testing"

func TestDosageFromCall(t *testing.T) {
	cases := []struct {
		call   string
		valid  bool
		dosage float64
	}{
		{"0/0", true, 0},
		{"0/1", true, 1},
		{"1/1", true, 2},
		{"1|0", true, 1},
		{"0/2", true, 1}, // non-ref allele counts toward dosage
		{"./.", false, 0},
		{"0/.", false, 0},
		{"", false, 0},
		{"1.5", true, 1.5},
		{"not-a-call", false, 0},
	}

	for _, c := range cases {
		got := DosageFromCall(c.call)
		if got.Valid != c.valid {
			t.Errorf("%q: valid=%v, want %v", c.call, got.Valid, c.valid)
			continue
		}
		if c.valid && got.Float64 != c.dosage {
			t.Errorf("%q: dosage=%f, want %f", c.call, got.Float64, c.dosage)
		}
	}
}

func TestRecordOverlapsHalfOpen(t *testing.T) {
	rec := Record{Contig: "chr1", Start: 150, End: 151}

	if !rec.Overlaps("chr1", 100, 200) {
		t.Error("record inside region should overlap")
	}
	if rec.Overlaps("chr2", 100, 200) {
		t.Error("different contig should not overlap")
	}
	if rec.Overlaps("chr1", 151, 200) {
		t.Error("region starting at record end should not overlap (half-open)")
	}
	if rec.Overlaps("chr1", 100, 150) {
		t.Error("region ending at record start should not overlap (half-open)")
	}
	if !rec.Overlaps("chr1", 150, 151) {
		t.Error("exactly coincident interval should overlap")
	}
}
