package export

import "testing"

func TestParseLength(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{input: "15mm", want: 15},
		{input: "1in", want: 25.4},
		{input: "2.54cm", want: 25.4},
		{input: "72pt", want: 25.4},
		{input: "96px", want: 25.4},
		{input: "12", want: 12},
	}

	for _, tc := range tests {
		got, err := ParseLength(tc.input)
		if err != nil {
			t.Fatalf("ParseLength(%q): %v", tc.input, err)
		}
		if diff := got - tc.want; diff > 0.0001 || diff < -0.0001 {
			t.Fatalf("ParseLength(%q): expected %f, got %f", tc.input, tc.want, got)
		}
	}

	for _, bad := range []string{"", "ten", "5furlongs", "-3mm"} {
		if _, err := ParseLength(bad); err == nil {
			t.Fatalf("ParseLength(%q): expected error", bad)
		}
	}
}

func TestLookupPageSize(t *testing.T) {
	size, err := LookupPageSize("letter")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if size != PageSizeLetter {
		t.Fatalf("expected letter, got %+v", size)
	}
	size, err = LookupPageSize("")
	if err != nil || size != PageSizeA4 {
		t.Fatalf("expected A4 default, got %+v (%v)", size, err)
	}
	if _, err := LookupPageSize("A3"); KindFromError(err) != KindValidation {
		t.Fatalf("expected validation error for A3, got %v", err)
	}
}

func TestCanonicalWidthIsLetterWidth(t *testing.T) {
	if got := PxToMM(CanonicalWidthPx); got < 215.8 || got > 216 {
		t.Fatalf("expected ~215.9mm, got %f", got)
	}
	if got := MMToPx(PxToMM(123)); got < 122.999 || got > 123.001 {
		t.Fatalf("round trip drifted: %f", got)
	}
}
