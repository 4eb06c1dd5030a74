package main

// See doc.go for documentation
import (
	"flag"
	"fmt"
	"os"

	"github.com/grailbio/bamutil/samutil"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
)

var (
	byName     = flag.Bool("by-name", false, "Check query-name order instead of coordinate order")
	sampleSize = flag.Int("sample-size", samutil.DefaultSampleSize, "Number of records to probe from the head of the file")
)

func usage() {
	fmt.Printf("Usage: %s [OPTIONS] {count|index|sorted} path.bam\n", os.Args[0])
	fmt.Printf("Options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	shutdown := grail.Init()
	defer shutdown()

	if flag.NArg() != 2 {
		log.Fatalf("Expected a subcommand and a BAM path; please check flag syntax: '%v'", flag.Args())
	}
	verb, path := flag.Arg(0), flag.Arg(1)
	ctx := vcontext.Background()
	tools := samutil.NewToolkit()

	switch verb {
	case "count":
		n, err := samutil.TotalMappedReads(ctx, tools, path)
		if err != nil {
			log.Fatalf("%s: %v", path, err)
		}
		fmt.Println(n)
	case "index":
		index, err := samutil.EnsureIndex(ctx, tools, path)
		if err != nil {
			log.Fatalf("%s: %v", path, err)
		}
		fmt.Println(index)
	case "sorted":
		sorted, err := samutil.IsSorted(ctx, tools, path, *byName, *sampleSize)
		if err != nil {
			log.Fatalf("%s: %v", path, err)
		}
		if !sorted {
			fmt.Println("unsorted")
			shutdown()
			os.Exit(1)
		}
		fmt.Println("sorted")
	default:
		log.Fatalf("Unknown subcommand %q", verb)
	}
}
