package wikixml

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/pgzip"
	"github.com/stretchr/testify/require"
)

const sampleDump = `<mediawiki>
  <siteinfo><sitename>Wikipedia</sitename></siteinfo>
  <page>
    <title>Alpha</title>
    <id>10</id>
    <revision>
      <id>999</id>
      <text>Alpha is the first letter.</text>
    </revision>
  </page>
  <page>
    <title>Beta</title>
    <id>20</id>
    <revision>
      <id>1001</id>
      <contributor><id>7</id></contributor>
      <text>Beta follows.</text>
    </revision>
  </page>
</mediawiki>`

func readAll(t *testing.T, r *Reader) []Page {
	t.Helper()
	var pages []Page
	err := r.ReadPages(func(p *Page) error {
		pages = append(pages, *p)
		return nil
	})
	require.NoError(t, err)
	return pages
}

func TestReadPages(t *testing.T) {
	pages := readAll(t, NewReader(strings.NewReader(sampleDump)))

	want := []Page{
		{Title: "Alpha", ID: "10", Text: "Alpha is the first letter."},
		{Title: "Beta", ID: "20", Text: "Beta follows."},
	}
	if d := cmp.Diff(want, pages); d != "" {
		t.Errorf("pages mismatch (-want +got):\n%s", d)
	}
}

func TestReadPagesCallbackError(t *testing.T) {
	r := NewReader(strings.NewReader(sampleDump))
	calls := 0
	err := r.ReadPages(func(p *Page) error {
		calls++
		return os.ErrClosed
	})
	if err == nil {
		t.Fatal("callback error was swallowed")
	}
	if calls != 1 {
		t.Errorf("callback ran %d times after erroring, want 1", calls)
	}
}

func TestReadPagesMalformed(t *testing.T) {
	r := NewReader(strings.NewReader("<mediawiki><page><title>X</title>"))
	err := r.ReadPages(func(p *Page) error { return nil })
	if err == nil {
		t.Error("malformed stream did not error")
	}
}

func TestOpenDumpGzip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dump.xml.gz")

	f, err := os.Create(path)
	require.NoError(t, err)
	zw := pgzip.NewWriter(f)
	_, err = zw.Write([]byte(sampleDump))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	in, err := OpenDump(path)
	require.NoError(t, err)
	defer in.Close()

	pages := readAll(t, NewReader(in))
	require.Len(t, pages, 2)
	require.Equal(t, "Alpha", pages[0].Title)
}
