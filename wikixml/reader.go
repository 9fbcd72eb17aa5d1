// Package wikixml streams pages out of MediaWiki XML exports. The
// reader is a thin event consumer: it never holds more than one page
// in memory, which is what makes indexing full dumps feasible.
package wikixml

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/pgzip"
)

// Page is one <page> element of a dump. ID is the page id declared by
// the dump; per the export format, later <id> elements inside the same
// page (revision and contributor ids) are ignored.
type Page struct {
	Title string
	ID    string
	Text  string
}

// Reader streams pages from a MediaWiki XML export.
type Reader struct {
	dec *xml.Decoder
}

func NewReader(r io.Reader) *Reader {
	return &Reader{dec: xml.NewDecoder(r)}
}

// ReadPages calls fn for every page in document order. A malformed
// event stream or an error from fn aborts the read.
func (r *Reader) ReadPages(fn func(*Page) error) error {
	var (
		inPage bool
		idDone bool
		field  *strings.Builder

		title, id, text strings.Builder
	)
	for {
		tok, err := r.dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading dump: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "page":
				inPage = true
				idDone = false
				field = nil
				title.Reset()
				id.Reset()
				text.Reset()
			case "title":
				if inPage {
					field = &title
				}
			case "id":
				if inPage && !idDone {
					field = &id
				}
			case "text":
				if inPage {
					field = &text
				}
			}

		case xml.CharData:
			if field != nil {
				field.Write(t)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "title", "text":
				field = nil
			case "id":
				if field != nil {
					// only the first id of a page counts
					idDone = true
				}
				field = nil
			case "page":
				if !inPage {
					continue
				}
				inPage = false
				page := &Page{
					Title: title.String(),
					ID:    strings.TrimSpace(id.String()),
					Text:  text.String(),
				}
				if err := fn(page); err != nil {
					return err
				}
			}
		}
	}
}

// OpenDump opens a dump file for streaming, transparently
// decompressing gzip by file extension.
func OpenDump(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	zr, err := pgzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &gzipReadCloser{zr: zr, f: f}, nil
}

type gzipReadCloser struct {
	zr *pgzip.Reader
	f  *os.File
}

func (g *gzipReadCloser) Read(p []byte) (int, error) {
	return g.zr.Read(p)
}

func (g *gzipReadCloser) Close() error {
	err := g.zr.Close()
	if cerr := g.f.Close(); err == nil {
		err = cerr
	}
	return err
}
