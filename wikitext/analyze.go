package wikitext

import (
	"strings"

	"github.com/grafana/regexp"

	"github.com/sourcegraph/wikindex"
)

var (
	selfClosing  = regexp.MustCompile(`<[^>]*/>`)
	refSpan      = regexp.MustCompile(`<ref[^>]*>[^<]*</ref>`)
	categorySpan = regexp.MustCompile(`\[\[Category:[^]]*]]`)
	infoboxOpen  = regexp.MustCompile(`{{Infobox`)
	infoboxClose = regexp.MustCompile(`\n}}|\n }}|\n==`)
)

// analysis accumulates the per-document postings map. The document id
// is carried explicitly; the analyzer holds no package state.
type analysis struct {
	id    int
	terms map[string]*wikindex.Posting
}

// add folds one field's terms into the document map. A term's body tag
// is only recorded when a stronger field already tagged it: a posting
// whose occurrences are all plain body carries no tags at all.
func (a *analysis) add(terms []string, tag wikindex.Tags) {
	w := wikindex.Weight(tag)
	for _, term := range terms {
		p := a.terms[term]
		if p == nil {
			p = &wikindex.Posting{DocID: a.id}
			a.terms[term] = p
		}
		p.Count += w
		if tag != wikindex.TagBody || p.Tags != 0 {
			p.Tags |= tag
		}
	}
}

// Analyze extracts the postings of one document. Field extraction
// order matters: each step tokenizes its segment and removes it, so
// later steps only see the residue. The order is title, references,
// categories, external links, infoboxes, and finally the remaining
// text as body.
func Analyze(id int, title, text string) map[string]*wikindex.Posting {
	a := &analysis{id: id, terms: make(map[string]*wikindex.Posting)}

	text = selfClosing.ReplaceAllString(text, " ")
	a.add(Normalize(title), wikindex.TagTitle)
	text = extractReferences(a, text)
	text = extractCategories(a, text)
	text = extractLinks(a, text)
	text = extractInfoboxes(a, text)
	a.add(Normalize(text), wikindex.TagBody)

	return a.terms
}

// sectionSpan locates a wiki section: it starts at the first
// occurrence of heading and ends at the earliest terminator found
// after the heading's line. ok is false when the heading is absent,
// unterminated by a newline, or no terminator follows.
func sectionSpan(text, heading string, terminators ...string) (start, end int, ok bool) {
	start = strings.Index(text, heading)
	if start < 0 {
		return 0, 0, false
	}
	nl := strings.IndexByte(text[start:], '\n')
	if nl < 0 {
		return 0, 0, false
	}
	from := start + nl + 1

	end = -1
	for _, t := range terminators {
		if i := strings.Index(text[from:], t); i >= 0 && (end < 0 || from+i < end) {
			end = from + i
		}
	}
	if end < 0 {
		return 0, 0, false
	}
	return start, end, true
}

// cutSpan removes [start, end) from text, leaving a single space so
// surrounding tokens do not fuse.
func cutSpan(text string, start, end int) string {
	return text[:start] + " " + text[end:]
}

// extractReferences consumes, in order: inline <ref> spans, the
// ==References== section up to the next blank line or section heading,
// and a {{refbegin}} block up to its {{refend}}.
func extractReferences(a *analysis, text string) string {
	for _, m := range refSpan.FindAllString(text, -1) {
		a.add(Normalize(m), wikindex.TagReference)
	}
	text = refSpan.ReplaceAllString(text, " ")

	if start, end, ok := sectionSpan(text, "==References==", "\n\n", "\n=="); ok {
		a.add(Normalize(text[start:end]), wikindex.TagReference)
		text = cutSpan(text, start, end)
	}

	if start := strings.Index(text, "{{refbegin}}\n"); start >= 0 {
		if i := strings.Index(text[start:], "{{refend}}"); i >= 0 {
			a.add(Normalize(text[start:start+i]), wikindex.TagReference)
			text = cutSpan(text, start, start+i)
		}
	}
	return text
}

func extractCategories(a *analysis, text string) string {
	for _, m := range categorySpan.FindAllString(text, -1) {
		a.add(Normalize(m), wikindex.TagCategory)
	}
	return categorySpan.ReplaceAllString(text, " ")
}

// extractLinks consumes the single ==External links== section, which
// runs until the next blank line or the start of the category footer.
func extractLinks(a *analysis, text string) string {
	if start, end, ok := sectionSpan(text, "==External links==", "\n\n", "[[Category"); ok {
		a.add(Normalize(text[start:end]), wikindex.TagLink)
		text = cutSpan(text, start, end)
	}
	return text
}

// extractInfoboxes tokenizes every {{Infobox region, each closed by
// the earliest following "\n}}", "\n }}" or "\n==". The union of the
// first opening and the last close is removed in one cut.
func extractInfoboxes(a *analysis, text string) string {
	spanStart, spanEnd := -1, -1
	for _, m := range infoboxOpen.FindAllStringIndex(text, -1) {
		if spanStart < 0 || m[0] < spanStart {
			spanStart = m[0]
		}
		rest := text[m[1]:]
		c := infoboxClose.FindStringIndex(rest)
		if c == nil {
			continue
		}
		a.add(Normalize(rest[:c[0]]), wikindex.TagInfobox)
		if end := m[1] + c[1]; end > spanEnd {
			spanEnd = end
		}
	}
	if spanStart >= 0 && spanEnd >= 0 {
		return cutSpan(text, spanStart, spanEnd)
	}
	return text
}
