// Package build implements index construction: documents stream in,
// bounded in-memory postings buckets spill to sorted stage-1 shards,
// and a final k-way merge produces the servable stage-2 index.
package build

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/sourcegraph/wikindex"
	"github.com/sourcegraph/wikindex/wikitext"
)

// skipPrefixes are the namespace prefixes whose pages never receive a
// document id.
var skipPrefixes = []string{
	"wikipedia:", "file:", "category:", "template:", "portal:", "help:",
}

// Options sets options for index building.
type Options struct {
	// IndexDir is the directory that receives shard files, title
	// buckets, the boundary vector and the page count.
	IndexDir string

	// StatsFile is where human readable statistics are written after
	// the merge. Empty disables the stats file.
	StatsFile string

	// ShardMax is the estimated byte size at which the in-memory
	// postings bucket spills to a stage-1 shard.
	ShardMax int

	// MergeShardMax is the flush threshold of the merge output
	// buffer. It is smaller than ShardMax so stage-2 shards stay fine
	// grained enough for useful boundary vector routing.
	MergeShardMax int

	// TitleBucket is the number of titles per title file.
	TitleBucket int

	// MemProfile writes a heap profile to this file after the merge.
	MemProfile string
}

// SetDefaults sets reasonable default options.
func (o *Options) SetDefaults() {
	if o.ShardMax == 0 {
		o.ShardMax = 60_000_000
	}
	if o.MergeShardMax == 0 {
		o.MergeShardMax = 20_000_000
	}
	if o.TitleBucket == 0 {
		o.TitleBucket = wikindex.DefaultTitleBucket
	}
}

// Flags adds flags for build options to fs.
func (o *Options) Flags(fs *flag.FlagSet) {
	x := *o
	x.SetDefaults()
	fs.IntVar(&o.ShardMax, "shard_limit", x.ShardMax, "estimated byte size at which a stage-1 shard is flushed")
	fs.IntVar(&o.MergeShardMax, "merge_shard_limit", x.MergeShardMax, "estimated byte size at which a stage-2 shard is flushed")
	fs.IntVar(&o.TitleBucket, "title_bucket", x.TitleBucket, "number of titles per title file")
	fs.StringVar(&o.MemProfile, "mem_profile", x.MemProfile, "write memory profile to this file")
}

// Builder accumulates streamed documents into stage-1 shards and
// title buckets, then merges everything into the final index on
// Finish. It is single threaded; document ids reflect Add order.
type Builder struct {
	opts Options

	docID int // last assigned document id

	// postings maps term -> serialized records of the current bucket.
	// size is the string-byte estimate that drives flushing: term
	// bytes on first insert, record bytes, one byte per separating
	// space.
	postings map[string]string
	size     int
	shardNum int // stage-1 shards written so far

	titles   []string
	titleNum int // title buckets written so far

	shardLogger io.WriteCloser
}

// NewBuilder creates the index directory and a builder writing to it.
func NewBuilder(opts Options) (*Builder, error) {
	opts.SetDefaults()
	if opts.IndexDir == "" {
		return nil, fmt.Errorf("builder: must set IndexDir")
	}
	if err := os.MkdirAll(opts.IndexDir, 0o755); err != nil {
		return nil, err
	}

	return &Builder{
		opts:     opts,
		postings: make(map[string]string),
		shardLogger: &lumberjack.Logger{
			Filename:   filepath.Join(opts.IndexDir, "wikindex-builder-shard-log.tsv"),
			MaxSize:    100, // Megabyte
			MaxBackups: 5,
		},
	}, nil
}

// Add ingests one page. Pages in the filtered namespaces are dropped
// before id assignment, so accepted documents are numbered 1..N in
// encounter order. The title is stored lowercased.
func (b *Builder) Add(title, text string) error {
	title = strings.ToLower(title)
	for _, p := range skipPrefixes {
		if strings.HasPrefix(title, p) {
			return nil
		}
	}

	b.docID++
	b.titles = append(b.titles, title)

	for term, p := range wikitext.Analyze(b.docID, title, text) {
		rec := p.String()
		b.size += len(rec)
		if prev, ok := b.postings[term]; ok {
			b.size++
			b.postings[term] = prev + " " + rec
		} else {
			b.size += len(term)
			b.postings[term] = rec
		}
	}

	if b.size >= b.opts.ShardMax {
		if err := b.flushPostings(); err != nil {
			return err
		}
	}
	if len(b.titles) >= b.opts.TitleBucket {
		if err := b.flushTitles(); err != nil {
			return err
		}
	}
	return nil
}

// DocCount returns the number of documents accepted so far.
func (b *Builder) DocCount() int {
	return b.docID
}

func (b *Builder) flushPostings() error {
	b.shardNum++
	name := wikindex.StageShardName(b.opts.IndexDir, 1, b.shardNum)
	if _, err := writeShard(name, b.postings); err != nil {
		return err
	}
	b.shardLog("flush", name)

	b.postings = make(map[string]string)
	b.size = 0
	return nil
}

func (b *Builder) flushTitles() error {
	b.titleNum++
	name := wikindex.TitleBucketName(b.opts.IndexDir, b.titleNum)
	if err := os.WriteFile(name, []byte(strings.Join(b.titles, "\n")), 0o644); err != nil {
		return err
	}
	b.titles = nil
	return nil
}

// Finish drains the postings and title buffers, merges the stage-1
// shards into the final index, persists the boundary vector and page
// count, and only then removes the stage-1 files. It should always be
// called once all documents are added.
func (b *Builder) Finish() error {
	defer b.shardLogger.Close()

	if len(b.postings) > 0 {
		if err := b.flushPostings(); err != nil {
			return err
		}
	}
	if len(b.titles) > 0 {
		if err := b.flushTitles(); err != nil {
			return err
		}
	}

	start := time.Now()
	m := &merger{opts: b.opts, inputs: b.shardNum, logf: b.shardLog}
	toc, err := m.run()
	if err != nil {
		return err
	}
	toc.PageCount = b.docID
	if err := toc.Write(b.opts.IndexDir); err != nil {
		return err
	}
	log.Printf("merged %d stage-1 shards into %d stage-2 shards in %.2fs",
		b.shardNum, len(toc.FirstWords), time.Since(start).Seconds())

	// The stage-1 shards are the recoverable state of an interrupted
	// merge. Remove them only after the boundary vector and page
	// count are on disk.
	if err := m.removeInputs(); err != nil {
		return err
	}

	if b.opts.MemProfile != "" {
		writeMemProfile(b.opts.MemProfile)
	}
	return b.writeStats(len(toc.FirstWords), m.vocab)
}

// writeStats reports the on-disk size, the number of files making up
// the index, and the vocabulary size.
func (b *Builder) writeStats(shards, vocab int) error {
	if b.opts.StatsFile == "" {
		return nil
	}

	var total int64
	entries, err := os.ReadDir(b.opts.IndexDir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if info, err := e.Info(); err == nil && info.Mode().IsRegular() {
			total += info.Size()
		}
	}

	files := shards + b.titleNum + 2 // + boundary vector + page count
	stats := fmt.Sprintf("Index size: %s (%.6f GB)\nNumber of files in which the inverted index is split: %d\nNumber of tokens in the inverted index: %d\n",
		humanize.Bytes(uint64(total)), float64(total)/1e9, files, vocab)
	return os.WriteFile(b.opts.StatsFile, []byte(stats), 0o644)
}

func (b *Builder) shardLog(action, shard string) {
	shard = filepath.Base(shard)
	var shardSize int64
	if fi, err := os.Stat(filepath.Join(b.opts.IndexDir, shard)); err == nil {
		shardSize = fi.Size()
	}
	_, _ = fmt.Fprintf(b.shardLogger, "%d\t%s\t%s\t%d\n", time.Now().UTC().Unix(), action, shard, shardSize)
}
