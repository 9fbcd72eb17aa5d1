package build

import (
	"log"
	"os"
	"runtime"
	"runtime/pprof"
)

func writeMemProfile(name string) {
	f, err := os.Create(name)
	if err != nil {
		log.Fatal("could not create memory profile: ", err)
	}
	defer f.Close()
	runtime.GC() // get up-to-date statistics
	if err := pprof.WriteHeapProfile(f); err != nil {
		log.Fatal("could not write memory profile: ", err)
	}
}
