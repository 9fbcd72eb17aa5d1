package wikindex

import (
	"fmt"
	"strconv"
	"strings"
)

// Posting is one term's record for one document: the weighted
// occurrence count, the document id, and the set of fields the term
// appeared in. Tags may be zero; such postings serialize without a
// tagchars segment and denote a pure body occurrence.
type Posting struct {
	Count int
	DocID int
	Tags  Tags
}

// AppendRecord appends the wire form of p to dst:
//
//	count "-" docid ("-" tagchars)?
func AppendRecord(dst []byte, p Posting) []byte {
	dst = strconv.AppendInt(dst, int64(p.Count), 10)
	dst = append(dst, '-')
	dst = strconv.AppendInt(dst, int64(p.DocID), 10)
	if p.Tags != 0 {
		dst = append(dst, '-')
		dst = p.Tags.appendChars(dst)
	}
	return dst
}

func (p Posting) String() string {
	return string(AppendRecord(nil, p))
}

// ParseRecord parses a single posting record. The grammar is strict:
// count and docid are unsigned decimals, and a present tagchars
// segment must be non-empty and draw only from ticrlb.
func ParseRecord(s string) (Posting, error) {
	countStr, rest, ok := strings.Cut(s, "-")
	if !ok {
		return Posting{}, fmt.Errorf("malformed posting record %q", s)
	}
	docStr, tagStr, hasTags := strings.Cut(rest, "-")

	count, err := strconv.ParseUint(countStr, 10, 63)
	if err != nil {
		return Posting{}, fmt.Errorf("malformed posting count in %q", s)
	}
	doc, err := strconv.ParseUint(docStr, 10, 63)
	if err != nil {
		return Posting{}, fmt.Errorf("malformed document id in %q", s)
	}

	p := Posting{Count: int(count), DocID: int(doc)}
	if hasTags {
		if p.Tags, err = ParseTags(tagStr); err != nil {
			return Posting{}, fmt.Errorf("record %q: %v", s, err)
		}
	}
	return p, nil
}

// ParseRecords parses a space separated posting record list.
func ParseRecords(s string) ([]Posting, error) {
	fields := strings.Split(s, " ")
	ps := make([]Posting, 0, len(fields))
	for _, f := range fields {
		p, err := ParseRecord(f)
		if err != nil {
			return nil, err
		}
		ps = append(ps, p)
	}
	return ps, nil
}

// SplitPostingLine splits a shard line into the term and its record
// list. The records are not validated; use ParseRecords for that.
func SplitPostingLine(line string) (term, records string, err error) {
	term, records, ok := strings.Cut(line, " ")
	if !ok || term == "" || records == "" {
		return "", "", fmt.Errorf("malformed posting line %q", line)
	}
	return term, records, nil
}
