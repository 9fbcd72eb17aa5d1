// Package search answers ranked queries against a finished index
// directory. Each query term is routed to the single stage-2 shard
// that can contain it via the boundary vector, the needed shards are
// scanned once, and the surviving postings are scored.
package search

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sourcegraph/wikindex"
	"github.com/sourcegraph/wikindex/query"
)

// maxResults is the number of ranked documents reported per query.
const maxResults = 10

// Result is one ranked document.
type Result struct {
	DocID int
	Score float64
	Title string
}

// Searcher serves queries over one index directory. It is not safe
// for concurrent use; per-query state lives on the stack.
type Searcher struct {
	dir    string
	toc    *wikindex.TOC
	titles *wikindex.TitleStore
}

// NewSearcher opens the index in dir. A missing boundary vector or
// page count file is a setup error; there is no index to serve.
func NewSearcher(dir string) (*Searcher, error) {
	toc, err := wikindex.ReadTOC(dir)
	if err != nil {
		return nil, err
	}
	return &Searcher{
		dir:    dir,
		toc:    toc,
		titles: wikindex.NewTitleStore(dir, wikindex.DefaultTitleBucket),
	}, nil
}

// termPostings is one query term's surviving posting list: document id
// to weighted term frequency, with the idf computed from the filtered
// document frequency.
type termPostings struct {
	weight int
	idf    float64
	tf     map[int]int
}

// Search runs one parsed query and returns at most maxResults
// documents by descending score. Equal scores keep ascending document
// id order. Any shard read or parse error aborts the whole query.
func (s *Searcher) Search(q *query.Query) ([]Result, error) {
	byShard := make(map[int][]*query.Term)
	for _, t := range q.Terms {
		shard := s.toc.ShardForTerm(t.Text)
		if shard == 0 {
			// sorts before the first shard's first word: cannot exist
			continue
		}
		byShard[shard] = append(byShard[shard], t)
	}

	shards := make([]int, 0, len(byShard))
	for n := range byShard {
		shards = append(shards, n)
	}
	sort.Ints(shards)

	var lists []*termPostings
	for _, n := range shards {
		found, err := s.scanShard(n, byShard[n])
		if err != nil {
			return nil, err
		}
		lists = append(lists, found...)
	}

	// Collect matched documents in ascending id order so that score
	// ties resolve deterministically.
	seen := make(map[int]bool)
	var docs []int
	for _, pl := range lists {
		for d := range pl.tf {
			if !seen[d] {
				seen[d] = true
				docs = append(docs, d)
			}
		}
	}
	sort.Ints(docs)

	results := make([]Result, 0, len(docs))
	for _, d := range docs {
		score := 0.0
		for _, pl := range lists {
			if tf, ok := pl.tf[d]; ok {
				score += float64(pl.weight) * pl.idf * tfSaturation(tf)
			}
		}
		if score == 0 {
			continue
		}
		results = append(results, Result{DocID: d, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > maxResults {
		results = results[:maxResults]
	}

	for i := range results {
		title, err := s.titles.Lookup(results[i].DocID)
		if err != nil {
			return nil, err
		}
		results[i].Title = title
	}
	return results, nil
}

// scanShard streams one stage-2 shard and collects the posting lists
// of the given terms. A posting survives when the term's query tags
// are a subset of its tags, or when the query asks for body only and
// the posting carries no tags at all (the pure body form).
func (s *Searcher) scanShard(n int, terms []*query.Term) ([]*termPostings, error) {
	pending := make(map[string]*query.Term, len(terms))
	for _, t := range terms {
		pending[t.Text] = t
	}

	name := wikindex.ShardName(s.dir, n)
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var found []*termPostings
	r := bufio.NewReaderSize(f, 1<<20)
	for len(pending) > 0 {
		line, rerr := r.ReadString('\n')
		if rerr != nil && rerr != io.EOF {
			return nil, fmt.Errorf("%s: %w", filepath.Base(name), rerr)
		}
		line = strings.TrimSuffix(line, "\n")
		if line != "" {
			term, records, err := wikindex.SplitPostingLine(line)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", filepath.Base(name), err)
			}
			if qt := pending[term]; qt != nil {
				delete(pending, term)
				pl, err := filterRecords(qt, records)
				if err != nil {
					return nil, fmt.Errorf("%s: term %s: %w", filepath.Base(name), term, err)
				}
				pl.idf = idf(len(pl.tf), s.toc.PageCount)
				found = append(found, pl)
			}
		}
		if rerr == io.EOF {
			break
		}
	}
	return found, nil
}

func filterRecords(qt *query.Term, records string) (*termPostings, error) {
	ps, err := wikindex.ParseRecords(records)
	if err != nil {
		return nil, err
	}
	pl := &termPostings{weight: qt.Count, tf: make(map[int]int, len(ps))}
	for _, p := range ps {
		if qt.Tags.SubsetOf(p.Tags) || (qt.Tags == wikindex.TagBody && p.Tags == 0) {
			pl.tf[p.DocID] = p.Count
		}
	}
	return pl, nil
}
