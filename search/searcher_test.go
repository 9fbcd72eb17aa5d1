package search

import (
	"fmt"
	"math"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sourcegraph/wikindex"
	"github.com/sourcegraph/wikindex/query"
)

// writeIndex lays out a minimal index directory: one stage-2 shard,
// one title bucket, and the table of contents.
func writeIndex(t *testing.T, shard string, titles []string) string {
	t.Helper()
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(wikindex.ShardName(dir, 1), []byte(shard), 0o644))
	require.NoError(t, os.WriteFile(wikindex.TitleBucketName(dir, 1), []byte(strings.Join(titles, "\n")), 0o644))

	first, _, err := wikindex.SplitPostingLine(strings.Split(shard, "\n")[0])
	require.NoError(t, err)
	toc := &wikindex.TOC{FirstWords: []string{first}, PageCount: len(titles)}
	require.NoError(t, toc.Write(dir))
	return dir
}

func TestSearchFieldFilterScore(t *testing.T) {
	dir := writeIndex(t,
		"delta 3-4-ti 2-5",
		[]string{"one", "two", "three", "delta doc", "plain doc"})

	s, err := NewSearcher(dir)
	require.NoError(t, err)

	results, err := s.Search(query.Parse("title:delta"))
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, 4, results[0].DocID)
	require.Equal(t, "delta doc", results[0].Title)

	// idf uses the filtered document frequency: one surviving record
	// out of five documents
	want := 1 * idf(1, 5) * (1 + 3*(k1+1)/(3+k1))
	require.InEpsilon(t, want, results[0].Score, 1e-12)
}

func TestSearchBodyOnlyMatchesUntagged(t *testing.T) {
	dir := writeIndex(t,
		"delta 3-4-ti 2-5",
		[]string{"one", "two", "three", "delta doc", "plain doc"})

	s, err := NewSearcher(dir)
	require.NoError(t, err)

	results, err := s.Search(query.Parse("b:delta"))
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, 5, results[0].DocID)
}

func TestSearchTopKCutoff(t *testing.T) {
	// 12 matching documents; only the 10 best come back, ties in
	// ascending document id order
	var records []string
	for d := 1; d <= 12; d++ {
		tf := 1
		switch d {
		case 3:
			tf = 2
		case 12:
			tf = 3
		}
		records = append(records, fmt.Sprintf("%d-%d", tf, d))
	}
	titles := make([]string, 12)
	for i := range titles {
		titles[i] = fmt.Sprintf("doc %d", i+1)
	}
	dir := writeIndex(t, "zulu "+strings.Join(records, " "), titles)

	s, err := NewSearcher(dir)
	require.NoError(t, err)

	results, err := s.Search(query.Parse("zulu"))
	require.NoError(t, err)
	require.Len(t, results, maxResults)

	var ids []int
	for _, r := range results {
		ids = append(ids, r.DocID)
	}
	require.Equal(t, []int{12, 3, 1, 2, 4, 5, 6, 7, 8, 9}, ids)

	for i := 1; i < len(results); i++ {
		require.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestSearchMalformedShardAbortsQuery(t *testing.T) {
	dir := writeIndex(t, "delta 3-4-ti", []string{"one", "two", "three", "four"})
	require.NoError(t, os.WriteFile(wikindex.ShardName(dir, 1), []byte("delta not-a-record"), 0o644))

	s, err := NewSearcher(dir)
	require.NoError(t, err)

	if _, err := s.Search(query.Parse("delta")); err == nil {
		t.Error("malformed posting record did not abort the query")
	}
}

func TestSearchMissingShardFile(t *testing.T) {
	dir := writeIndex(t, "delta 3-4-ti", []string{"one", "two", "three", "four"})
	require.NoError(t, os.Remove(wikindex.ShardName(dir, 1)))

	s, err := NewSearcher(dir)
	require.NoError(t, err)

	if _, err := s.Search(query.Parse("delta")); err == nil {
		t.Error("missing shard file did not abort the query")
	}
}

func TestScoreProperties(t *testing.T) {
	// tf saturation is monotone non-decreasing
	prev := 0.0
	for tf := 0; tf <= 64; tf++ {
		cur := tfSaturation(tf)
		if cur < prev {
			t.Fatalf("tfSaturation(%d) = %v < tfSaturation(%d) = %v", tf, cur, tf-1, prev)
		}
		prev = cur
	}

	// idf stays non-negative for df up to the corpus size
	for df := 0; df <= 100; df++ {
		if v := idf(df, 100); v < 0 || math.IsNaN(v) {
			t.Fatalf("idf(%d, 100) = %v", df, v)
		}
	}
}
