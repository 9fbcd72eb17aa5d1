// Command wikindex-index builds a sharded inverted index from a
// MediaWiki XML dump.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime/pprof"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/sourcegraph/wikindex/build"
	"github.com/sourcegraph/wikindex/wikixml"
)

func main() {
	cpuProfile := flag.String("cpu_profile", "", "write cpu profile to file")
	var opts build.Options
	opts.Flags(flag.CommandLine)
	flag.Parse()

	if flag.NArg() != 3 {
		fmt.Fprintf(flag.CommandLine.Output(), "USAGE: %s [options] INPUT-XML INDEX-DIR STATS-FILE\n", filepath.Base(os.Args[0]))
		fmt.Fprintln(flag.CommandLine.Output(), "Options:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Tune GOMAXPROCS to match Linux container CPU quota.
	_, _ = maxprocs.Set()

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			log.Fatal(err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal(err)
		}
		defer pprof.StopCPUProfile()
	}

	opts.IndexDir = flag.Arg(1)
	opts.StatsFile = flag.Arg(2)

	start := time.Now()
	if err := indexDump(flag.Arg(0), opts); err != nil {
		log.Fatal(err)
	}
	log.Printf("indexed %s in %.2fs", flag.Arg(0), time.Since(start).Seconds())
	logMemory()
}

func indexDump(path string, opts build.Options) error {
	in, err := wikixml.OpenDump(path)
	if err != nil {
		return err
	}
	defer in.Close()

	builder, err := build.NewBuilder(opts)
	if err != nil {
		return err
	}

	r := wikixml.NewReader(in)
	if err := r.ReadPages(func(p *wikixml.Page) error {
		return builder.Add(p.Title, p.Text)
	}); err != nil {
		return err
	}

	if err := builder.Finish(); err != nil {
		return err
	}
	log.Printf("indexed %d documents", builder.DocCount())
	return nil
}

func logMemory() {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return
	}
	if mi, err := p.MemoryInfo(); err == nil {
		log.Printf("memory taken: %.3f GB", float64(mi.RSS)/1e9)
	}
}
