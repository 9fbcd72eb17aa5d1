// Package wikindex defines the on-disk model of a sharded inverted
// index over a Wikipedia dump: field tags, posting records, the index
// directory layout, and title buckets.
package wikindex

import (
	"errors"
	"fmt"
)

// Tags is a set of field tags attached to one posting. The zero value
// is the empty set. An empty set has no wire form: a posting record
// without a tag suffix is a pure body posting.
type Tags uint8

const (
	TagTitle Tags = 1 << iota
	TagInfobox
	TagCategory
	TagReference
	TagLink
	TagBody
)

// tagOrder fixes the serialization order of tag characters.
var tagOrder = [...]struct {
	tag Tags
	ch  byte
}{
	{TagTitle, 't'},
	{TagInfobox, 'i'},
	{TagCategory, 'c'},
	{TagReference, 'r'},
	{TagLink, 'l'},
	{TagBody, 'b'},
}

// Weight returns the scoring weight of a single field tag. A term
// occurrence contributes its field's weight to the posting count.
func Weight(t Tags) int {
	switch t {
	case TagTitle:
		return 6
	case TagInfobox:
		return 3
	case TagCategory:
		return 2
	case TagReference, TagLink, TagBody:
		return 1
	}
	return 0
}

// TagForChar maps a tag character to its tag.
func TagForChar(c byte) (Tags, bool) {
	for _, o := range tagOrder {
		if o.ch == c {
			return o.tag, true
		}
	}
	return 0, false
}

// ParseTags parses a tagchars string. Every character must be one of
// ticrlb, and the string must be non-empty; records with no tags omit
// the suffix entirely.
func ParseTags(s string) (Tags, error) {
	if s == "" {
		return 0, errors.New("empty tagchars")
	}
	var t Tags
	for i := 0; i < len(s); i++ {
		tag, ok := TagForChar(s[i])
		if !ok {
			return 0, fmt.Errorf("invalid field tag %q", s[i])
		}
		t |= tag
	}
	return t, nil
}

func (t Tags) String() string {
	buf := make([]byte, 0, len(tagOrder))
	return string(t.appendChars(buf))
}

func (t Tags) appendChars(dst []byte) []byte {
	for _, o := range tagOrder {
		if t&o.tag != 0 {
			dst = append(dst, o.ch)
		}
	}
	return dst
}

// SubsetOf reports whether every tag in t is also in o.
func (t Tags) SubsetOf(o Tags) bool {
	return t&o == t
}
