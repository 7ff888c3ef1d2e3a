package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/rawbytedev/sparsetuple"
	"github.com/rawbytedev/sparsetuple/pkg/schemaset"
)

// Memory harness: holds n sparse records (or their dense views with -dense)
// and writes a heap profile.
func main() {
	n := flag.Int("n", 100000, "records to hold")
	dense := flag.Bool("dense", false, "keep dense views instead of sparse records")
	defs := flag.String("defs", "", "optional YAML definitions file")
	typeName := flag.String("type", "Person", "type to instantiate")
	wait := flag.Duration("wait", 0, "keep the pprof endpoint up for this long")
	pprofAddr := flag.String("pprof", "", "serve net/http/pprof on this address, e.g. localhost:6060")
	flag.Parse()

	if addr := listenAddr(*pprofAddr, *wait); addr != "" {
		go func() {
			log.Println(http.ListenAndServe(addr, nil))
		}()
	}

	typ := sparsetuple.MustDefine("Person", "username", "first", "middle", "last", "city", "state", "zip", "bday")
	if *defs != "" {
		set, err := schemaset.LoadFile(*defs)
		if err != nil {
			log.Fatal(err)
		}
		t, ok := set.Lookup(*typeName)
		if !ok {
			log.Fatalf("type %q not found in %s", *typeName, *defs)
		}
		typ = t
	}
	fields := typ.Fields()
	if len(fields) == 0 {
		log.Fatalf("type %s has no fields", typ.Name())
	}
	last := fields[len(fields)-1]

	f, err := os.Create("mem.prof")
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	runtime.MemProfileRate = 1

	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)

	sparse := make([]*sparsetuple.Record, 0, *n)
	var views [][]any
	if *dense {
		views = make([][]any, 0, *n)
	}
	for i := 0; i < *n; i++ {
		set := []sparsetuple.Field{sparsetuple.F(fields[0], fmt.Sprintf("user%d", i))}
		if last != fields[0] {
			set = append(set, sparsetuple.F(last, i))
		}
		r, err := typ.New(set...)
		if err != nil {
			log.Fatal(err)
		}
		if *dense {
			views = append(views, r.Values())
			continue
		}
		sparse = append(sparse, r)
	}

	runtime.GC()
	runtime.ReadMemStats(&after)
	log.Printf("%s x%d dense=%v heap=%d bytes", typ.Name(), *n, *dense, int64(after.HeapAlloc)-int64(before.HeapAlloc))
	if len(sparse) > 0 {
		log.Println(sparse[0])
	}
	runtime.KeepAlive(views)

	if err := pprof.WriteHeapProfile(f); err != nil {
		log.Fatal(err)
	}
	time.Sleep(*wait)
}

const defaultPprofAddr = "localhost:6060"

// listenAddr returns where to serve pprof, or "" to stay off the network.
// -wait without -pprof implies the default loopback address.
func listenAddr(addr string, wait time.Duration) string {
	if addr == "" && wait > 0 {
		return defaultPprofAddr
	}
	return addr
}
