// Package query parses the field-qualified query language: terms,
// optionally bound to document fields with a "field:" prefix, where a
// field binding carries forward over the following terms.
package query

import (
	"strings"

	"github.com/surgebase/porter2"

	"github.com/sourcegraph/wikindex"
	"github.com/sourcegraph/wikindex/wikitext"
)

// Term is one stemmed query term together with the fields it was
// bound to. Zero Tags means the term was not bound to any field and
// matches postings from every field.
type Term struct {
	Text  string
	Count int
	Tags  wikindex.Tags
}

// Query is a parsed multi-field query. Terms are unique by stemmed
// text and kept in first-seen order.
type Query struct {
	Terms []*Term
}

// fieldTags maps query field names to field tags. The single letter
// forms are accepted alongside the long names. Unknown fields bind
// nothing, so their terms match like unqualified ones.
var fieldTags = map[string]wikindex.Tags{
	"t": wikindex.TagTitle, "title": wikindex.TagTitle,
	"i": wikindex.TagInfobox, "infobox": wikindex.TagInfobox,
	"c": wikindex.TagCategory, "category": wikindex.TagCategory,
	"r": wikindex.TagReference, "ref": wikindex.TagReference, "reference": wikindex.TagReference,
	"l": wikindex.TagLink, "link": wikindex.TagLink, "links": wikindex.TagLink,
	"b": wikindex.TagBody, "body": wikindex.TagBody,
}

// Parse tokenizes a query line. Commas count as whitespace. The token
// forms are:
//
//	field:term   binds term to field
//	field:       sets the field for the following terms
//	:term        binds term to the current field
//	term         a plain term under the current field
//
// A bare token immediately followed by a token starting with ":" is a
// field name for that token, not a search term. Terms are lowercased
// and stemmed, stopwords are dropped, and repeated terms aggregate
// their counts and field bindings.
func Parse(s string) *Query {
	tokens := strings.Fields(strings.ReplaceAll(s, ",", " "))

	q := &Query{}
	byText := make(map[string]*Term)
	var field wikindex.Tags

	for i, tok := range tokens {
		var term string
		before, after, hasColon := strings.Cut(tok, ":")
		switch {
		case tok == ":":
			continue
		case !hasColon:
			if i+1 < len(tokens) && strings.HasPrefix(tokens[i+1], ":") {
				field = fieldTags[strings.ToLower(tok)]
				continue
			}
			term = tok
		case before == "":
			term = after
		case after == "":
			field = fieldTags[strings.ToLower(before)]
			continue
		default:
			field = fieldTags[strings.ToLower(before)]
			term = after
		}

		stemmed := porter2.Stem(strings.ToLower(term))
		if stemmed == "" || wikitext.IsStopword(stemmed) {
			continue
		}

		if t := byText[stemmed]; t != nil {
			t.Count++
			t.Tags |= field
		} else {
			t = &Term{Text: stemmed, Count: 1, Tags: field}
			byText[stemmed] = t
			q.Terms = append(q.Terms, t)
		}
	}
	return q
}
