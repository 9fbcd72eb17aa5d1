package build

import (
	"bufio"
	"container/heap"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sourcegraph/wikindex"
)

// merger performs the k-way merge of stage-1 shards into stage-2
// shards and collects the boundary vector along the way.
type merger struct {
	opts   Options
	inputs int // number of stage-1 shards
	logf   func(action, shard string)

	buf   map[string]string
	size  int
	out   int      // stage-2 shards written
	first []string // boundary vector: first term of each output shard
	vocab int      // distinct terms merged
}

// shardCursor is one stage-1 shard's current line.
type shardCursor struct {
	index   int // 1-based stage-1 shard number; ties drain in this order
	term    string
	records string
	r       *bufio.Reader
	f       *os.File
}

// advance reads the cursor's next line. It returns false at the end
// of the shard.
func (c *shardCursor) advance() (bool, error) {
	line, err := c.r.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	line = strings.TrimSuffix(line, "\n")
	if line == "" {
		return false, nil
	}
	term, records, serr := wikindex.SplitPostingLine(line)
	if serr != nil {
		return false, fmt.Errorf("%s: %w", filepath.Base(c.f.Name()), serr)
	}
	c.term, c.records = term, records
	return true, nil
}

type cursorHeap []*shardCursor

func (h cursorHeap) Len() int { return len(h) }
func (h cursorHeap) Less(i, j int) bool {
	if h[i].term != h[j].term {
		return h[i].term < h[j].term
	}
	return h[i].index < h[j].index
}
func (h cursorHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *cursorHeap) Push(x interface{}) { *h = append(*h, x.(*shardCursor)) }
func (h *cursorHeap) Pop() interface{} {
	old := *h
	n := len(old)
	c := old[n-1]
	*h = old[:n-1]
	return c
}

// run merges all stage-1 shards. Because every cursor is sorted and
// equal terms drain in shard-index order, the output stream is
// monotonic in term and each term's records keep global document id
// order. That monotonicity is what makes each flush's smallest term a
// valid boundary entry.
func (m *merger) run() (*wikindex.TOC, error) {
	m.buf = make(map[string]string)

	h := make(cursorHeap, 0, m.inputs)
	defer func() {
		for _, c := range h {
			c.f.Close()
		}
	}()
	for i := 1; i <= m.inputs; i++ {
		f, err := os.Open(wikindex.StageShardName(m.opts.IndexDir, 1, i))
		if err != nil {
			return nil, err
		}
		c := &shardCursor{index: i, f: f, r: bufio.NewReaderSize(f, 1<<20)}
		ok, err := c.advance()
		if err != nil {
			f.Close()
			return nil, err
		}
		if !ok {
			f.Close()
			continue
		}
		h = append(h, c)
	}
	heap.Init(&h)

	for h.Len() > 0 {
		term := h[0].term
		var records strings.Builder
		for h.Len() > 0 && h[0].term == term {
			c := h[0]
			if records.Len() > 0 {
				records.WriteByte(' ')
			}
			records.WriteString(c.records)

			ok, err := c.advance()
			if err != nil {
				return nil, err
			}
			if ok {
				heap.Fix(&h, 0)
			} else {
				c.f.Close()
				heap.Pop(&h)
			}
		}

		m.vocab++
		m.buf[term] = records.String()
		m.size += len(term) + records.Len()
		if m.size >= m.opts.MergeShardMax {
			if err := m.flush(); err != nil {
				return nil, err
			}
		}
	}
	if len(m.buf) > 0 {
		if err := m.flush(); err != nil {
			return nil, err
		}
	}

	return &wikindex.TOC{FirstWords: m.first}, nil
}

func (m *merger) flush() error {
	m.out++
	name := wikindex.ShardName(m.opts.IndexDir, m.out)
	first, err := writeShard(name, m.buf)
	if err != nil {
		return err
	}
	if m.logf != nil {
		m.logf("merge", name)
	}
	m.first = append(m.first, first)
	m.buf = make(map[string]string)
	m.size = 0
	return nil
}

// removeInputs deletes the stage-1 shards. Callers must persist the
// boundary vector and page count first.
func (m *merger) removeInputs() error {
	for i := 1; i <= m.inputs; i++ {
		name := wikindex.StageShardName(m.opts.IndexDir, 1, i)
		if m.logf != nil {
			m.logf("remove", name)
		}
		if err := os.Remove(name); err != nil {
			return err
		}
	}
	return nil
}

// writeShard writes one sorted term -> records shard file and returns
// its lexicographically smallest term.
func writeShard(path string, postings map[string]string) (string, error) {
	if len(postings) == 0 {
		return "", fmt.Errorf("%s: refusing to write empty shard", filepath.Base(path))
	}
	terms := make([]string, 0, len(postings))
	for t := range postings {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	w := bufio.NewWriter(f)
	for i, t := range terms {
		if i > 0 {
			w.WriteByte('\n')
		}
		w.WriteString(t)
		w.WriteByte(' ')
		w.WriteString(postings[t])
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return terms[0], nil
}
