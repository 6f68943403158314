package genre

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Alt-Rock", "rock"},
		{"alt-rock", "rock"},
		{"k-pop", "pop"},
		{"K-POP", "pop"},
		{"uk rock", "rock"},
		{"britpop", "pop"},
		{"deep house", "electronic"},
		{"neo-soul", "r&b"},
		{"ska punk", "reggae"},
		// techno is declared before dub
		{"dub techno", "electronic"},
		{"hip hop", "hip-hop"},
		{"synth", "pop"},
		{"swing", "jazz"},
		{"experimental noise collage", "experimental noise collage"},
		{"Bossa Nova", "bossa nova"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	tags := []string{"dub techno", "pop rock", "folk rock", "country rock", "blues rock", "symphonic metal", "synth"}
	for _, tag := range tags {
		want := Normalize(tag)
		for i := 0; i < 100; i++ {
			if got := Normalize(tag); got != want {
				t.Fatalf("Normalize(%q) = %q; want %q", tag, got, want)
			}
		}
	}
}

func TestTableBuckets(t *testing.T) {
	for _, e := range table {
		if !IsBucket(e.bucket) {
			t.Errorf("table entry %q maps to %q; want a canonical bucket", e.tag, e.bucket)
		}
		if got := Normalize(e.tag); got != e.bucket {
			t.Errorf("Normalize(%q) = %q; want %q", e.tag, got, e.bucket)
		}
	}
}
