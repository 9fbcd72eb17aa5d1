package wikitext

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTokenize(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"Hello World", []string{"hello", "world"}},
		{"Hello <b>World</b>", []string{"hello", "world"}},
		{"see http://example.org/page more", []string{"see", "more"}},
		{"logo.svg caption", []string{"caption"}},
		{"|width=5\n|height=7\n", []string{"5", "7"}},
		{"don't stop-believing", []string{"don", "t", "stop", "believing"}},
		{"", nil},
		{"...", nil},
	}
	for _, c := range cases {
		got := Tokenize(c.in)
		if len(got) == 0 {
			got = nil
		}
		if d := cmp.Diff(c.want, got); d != "" {
			t.Errorf("Tokenize(%q) mismatch (-want +got):\n%s", c.in, d)
		}
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize("Running cats and dogs")
	want := []string{"run", "cat", "dog"}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("Normalize mismatch (-want +got):\n%s", d)
	}

	// stopword-only input normalizes to nothing
	if got := Normalize("the is and of"); len(got) != 0 {
		t.Errorf("Normalize(stopwords) = %v, want empty", got)
	}
}

func TestValidTerm(t *testing.T) {
	valid := []string{
		"alpha",
		"x",
		"1234",
		"ab1",
		"v8",
		"abcdefghijklmnopqrst", // exactly 20 bytes
	}
	for _, term := range valid {
		if !ValidTerm(term) {
			t.Errorf("ValidTerm(%q) = false, want true", term)
		}
	}

	invalid := []string{
		"",
		"abcdefghijklmnopqrstu", // 21 bytes
		"00ab",
		"007",
		"12345", // pure digits longer than 4
		"1a2",   // digit letter digit
		"ab1c",  // letter digit letter
		"aaab",  // leading letter repeated three times
	}
	for _, term := range invalid {
		if ValidTerm(term) {
			t.Errorf("ValidTerm(%q) = true, want false", term)
		}
	}
}

func TestNoisePrefixAnchored(t *testing.T) {
	// the noise shapes only fire at the start of the term
	for _, term := range []string{"xaaab", "9abc", "za1"} {
		if !ValidTerm(term) {
			t.Errorf("ValidTerm(%q) = false, want true", term)
		}
	}
}
