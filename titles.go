package wikindex

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
)

// TitleStore resolves document ids to titles. Titles are written in
// insertion order across numbered bucket files of fixed size, so a
// lookup opens exactly one file and reads at most one bucket's worth
// of lines.
type TitleStore struct {
	dir    string
	bucket int
}

func NewTitleStore(dir string, bucket int) *TitleStore {
	if bucket <= 0 {
		bucket = DefaultTitleBucket
	}
	return &TitleStore{dir: dir, bucket: bucket}
}

// Lookup returns the title of the document with the given 1-based id.
func (s *TitleStore) Lookup(id int) (string, error) {
	if id < 1 {
		return "", fmt.Errorf("document id %d out of range", id)
	}
	name := TitleBucketName(s.dir, (id-1)/s.bucket+1)
	f, err := os.Open(name)
	if err != nil {
		return "", err
	}
	defer f.Close()

	want := (id - 1) % s.bucket
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	for i := 0; sc.Scan(); i++ {
		if i == want {
			return sc.Text(), nil
		}
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("%s: %w", filepath.Base(name), err)
	}
	return "", fmt.Errorf("%s: no title for document %d", filepath.Base(name), id)
}
