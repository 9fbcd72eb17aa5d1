package wikindex

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const (
	firstWordsFile = "first_words.txt"
	pageCountFile  = "page_count.txt"
)

// DefaultTitleBucket is the number of titles per title bucket file.
// The build and search sides must agree on it; title lookups map a
// document id to a bucket and line with plain arithmetic.
const DefaultTitleBucket = 10000

// StageShardName returns the name of the n-th (1-based) shard of the
// given build stage.
func StageShardName(dir string, stage, n int) string {
	return filepath.Join(dir, fmt.Sprintf("index%d_%d.txt", stage, n))
}

// ShardName returns the name of the n-th (1-based) stage-2 shard, the
// form the index serves queries from.
func ShardName(dir string, n int) string {
	return StageShardName(dir, 2, n)
}

// TitleBucketName returns the name of the k-th (1-based) title bucket.
func TitleBucketName(dir string, k int) string {
	return filepath.Join(dir, fmt.Sprintf("title_%d.txt", k))
}

// TOC ties a finished index directory together: the stage-2 boundary
// vector and the total accepted document count. It is written once at
// the end of a build and is read-only for search.
type TOC struct {
	// FirstWords is the boundary vector: entry i holds the first term
	// of stage-2 shard i+1. It is sorted because the merge emits terms
	// monotonically.
	FirstWords []string

	// PageCount is the total number of accepted documents.
	PageCount int
}

// ReadTOC loads the boundary vector and page count from dir. Either
// file missing means the directory does not hold a usable index.
func ReadTOC(dir string) (*TOC, error) {
	fw, err := os.ReadFile(filepath.Join(dir, firstWordsFile))
	if err != nil {
		return nil, fmt.Errorf("reading boundary vector: %w", err)
	}
	pc, err := os.ReadFile(filepath.Join(dir, pageCountFile))
	if err != nil {
		return nil, fmt.Errorf("reading page count: %w", err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(pc)))
	if err != nil {
		return nil, fmt.Errorf("malformed page count: %v", err)
	}

	toc := &TOC{PageCount: n}
	if s := strings.TrimSpace(string(fw)); s != "" {
		toc.FirstWords = strings.Split(s, " ")
	}
	return toc, nil
}

// Write persists the table of contents. The boundary vector is a
// single space separated line.
func (t *TOC) Write(dir string) error {
	if err := os.WriteFile(filepath.Join(dir, firstWordsFile), []byte(strings.Join(t.FirstWords, " ")), 0o644); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, pageCountFile), []byte(strconv.Itoa(t.PageCount)), 0o644)
}

// ShardForTerm returns the 1-based stage-2 shard that must contain
// term, or 0 when term sorts before the first shard's first word and
// therefore cannot exist. A term equal to a boundary entry starts the
// shard that entry belongs to, not the one before it.
func (t *TOC) ShardForTerm(term string) int {
	i := sort.SearchStrings(t.FirstWords, term)
	if i < len(t.FirstWords) && t.FirstWords[i] == term {
		return i + 1
	}
	return i
}
