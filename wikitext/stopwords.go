package wikitext

import "strings"

// stopwordList is the closed English stopword list shared by the index
// and query paths. Any divergence between the two sides silently
// corrupts scoring, so both consult this single list. Stemmed variants
// of the inflected entries are included because the query side checks
// after stemming.
const stopwordList = `
a about abov above after again against all am an and ani any are as at
be becaus because been befor before being below between both but by
can could did do doe does doing down dure during
each few for from further
had has have having he her here hers herself him himself his how
i if in into is it its itself
just me more most my myself
no nor not now of off on onc once onli only or other our ours ourselv
ourselves out over own
s same she should so some such
t than that the their theirs them themselv themselves then there these they
this those through to too
under until up veri very was we were what when where which while who
whom whi why will with you your yours yourself yourselv yourselves
`

var stopwords = func() map[string]struct{} {
	m := make(map[string]struct{})
	for _, w := range strings.Fields(stopwordList) {
		m[w] = struct{}{}
	}
	return m
}()

// IsStopword reports whether the token is on the shared English
// stopword list.
func IsStopword(token string) bool {
	_, ok := stopwords[token]
	return ok
}
