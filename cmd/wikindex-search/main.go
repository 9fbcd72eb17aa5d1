// Command wikindex-search answers ranked queries against an index
// built by wikindex-index. Queries are read one per line; results go
// to query_op.txt in the working directory.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/sourcegraph/wikindex/query"
	"github.com/sourcegraph/wikindex/search"
)

const outputFile = "query_op.txt"

func main() {
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Fprintf(flag.CommandLine.Output(), "USAGE: %s [options] INDEX-DIR QUERIES-FILE\n", filepath.Base(os.Args[0]))
		fmt.Fprintln(flag.CommandLine.Output(), "Options:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	_, _ = maxprocs.Set()

	if err := run(flag.Arg(0), flag.Arg(1)); err != nil {
		log.Fatal(err)
	}
}

func run(indexDir, queriesFile string) error {
	searcher, err := search.NewSearcher(indexDir)
	if err != nil {
		return err
	}

	in, err := os.Open(queriesFile)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(outputFile)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(out)

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	for sc.Scan() {
		start := time.Now()
		results, err := searcher.Search(query.Parse(sc.Text()))
		if err != nil {
			// A broken shard or posting line aborts this query only;
			// the remaining queries still run.
			log.Printf("query %q: %v", sc.Text(), err)
			continue
		}
		if len(results) == 0 {
			fmt.Fprintln(w, "NO RESULTS FOUND")
		} else {
			for _, r := range results {
				fmt.Fprintf(w, "%d, %v, %s\n", r.DocID, r.Score, r.Title)
			}
		}
		fmt.Fprintf(w, "%v\n\n", time.Since(start).Seconds())
	}
	if err := sc.Err(); err != nil {
		return err
	}

	if err := w.Flush(); err != nil {
		return err
	}
	return out.Close()
}
