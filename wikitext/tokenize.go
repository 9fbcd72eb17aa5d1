// Package wikitext turns raw wiki markup into index terms: it
// normalizes and tokenizes text segments and extracts the weighted,
// field-tagged term statistics of whole documents.
package wikitext

import (
	"strings"

	"github.com/grafana/regexp"
	"github.com/surgebase/porter2"
)

var (
	htmlTags   = regexp.MustCompile(`<[^>]*>`)
	urls       = regexp.MustCompile(`http[^ }|]*[ }|]|[a-z0-9]*\.(svg|png|jpeg|jpg|com|html|gif|pdf)`)
	equalities = regexp.MustCompile(`(\||!) ?[^=|\n}\]]*=`)
	splitter   = regexp.MustCompile(`[^a-z0-9]+`)
)

// Tokenize lowercases a text segment, strips HTML-like tags, URLs and
// file-name tokens, and wiki table field equalities, then splits on
// runs of characters outside [a-z0-9].
func Tokenize(segment string) []string {
	segment = strings.ToLower(segment)
	segment = htmlTags.ReplaceAllString(segment, " ")
	segment = urls.ReplaceAllString(segment, " ")
	segment = equalities.ReplaceAllString(segment, " ")

	parts := splitter.Split(segment, -1)
	tokens := parts[:0]
	for _, p := range parts {
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

// Normalize runs the full index-side pipeline on a segment: tokenize,
// drop stopwords, stem, and keep only valid terms. The index side
// checks stopwords before stemming, the query side after; the list
// must cover both forms.
func Normalize(segment string) []string {
	var terms []string
	for _, tok := range Tokenize(segment) {
		if IsStopword(tok) {
			continue
		}
		if t := porter2.Stem(tok); ValidTerm(t) {
			terms = append(terms, t)
		}
	}
	return terms
}

// ValidTerm reports whether a stemmed token may enter the index: it
// must be non-empty and at most 20 bytes, must not begin with "00",
// may be all digits only when at most 4 long, and must not begin with
// one of the noise shapes.
func ValidTerm(term string) bool {
	if term == "" || len(term) > 20 {
		return false
	}
	if strings.HasPrefix(term, "00") {
		return false
	}
	if isDigits(term) {
		return len(term) <= 4
	}
	return !noisePrefix(term)
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return s != ""
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return c >= 'a' && c <= 'z' }

// noisePrefix reports whether s starts with one of the junk shapes
// that survive tokenization: digits-letters-digit, letters-digits-
// letter, or the same character three times in a row. These are
// mostly identifiers, measurements and OCR artifacts.
func noisePrefix(s string) bool {
	if len(s) >= 3 && s[0] == s[1] && s[1] == s[2] {
		return true
	}

	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i > 0 {
		j := i
		for j < len(s) && isLetter(s[j]) {
			j++
		}
		if j > i && j < len(s) && isDigit(s[j]) {
			return true
		}
	}

	i = 0
	for i < len(s) && isLetter(s[i]) {
		i++
	}
	if i > 0 {
		j := i
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		if j > i && j < len(s) && isLetter(s[j]) {
			return true
		}
	}
	return false
}
