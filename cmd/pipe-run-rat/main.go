// Package main is the record-at-a-time pipeline runner. It produces output
// byte-identical to pipe-run while stepping the pipeline one record (or one
// flush) at a time, and can dump the full pipe-point trace or cross-check the
// result against the batch executor.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"recpipe/internal/dsl"
	"recpipe/internal/pipeline"
	"recpipe/internal/record"
)

func main() {
	var (
		outPath   string
		fold      bool
		dumpTrace bool
		verify    bool
	)

	flag.StringVar(&outPath, "o", "", "output file path (default stdout)")
	flag.BoolVar(&fold, "fold", false, "fold accented input characters to plain ASCII before processing")
	flag.BoolVar(&dumpTrace, "trace", false, "dump per-step pipe points to stderr")
	flag.BoolVar(&verify, "verify", false, "also run the batch executor and fail on any output divergence")
	verbose := flag.Bool("v", false, "enable verbose logs")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 2 {
		usage()
		os.Exit(2)
	}
	pipePath := flag.Arg(0)
	dataPath := flag.Arg(1)

	start := time.Now()

	p, err := loadPipeline(pipePath)
	if err != nil {
		fatalf("%v", err)
	}
	input, err := loadRecords(dataPath, fold)
	if err != nil {
		fatalf("%v", err)
	}

	if *verbose {
		log.Printf("pipeline: stages=%d input_records=%d mode=rat", p.StageCount(), len(input))
	}

	var (
		trace    pipeline.RatDebugTrace
		batchOut []record.Record
	)

	if verify {
		// Run both executors over independent stage instances; they share only
		// the compiled pipeline, which is read-only once built.
		var g errgroup.Group
		g.Go(func() error {
			trace = runRat(p, input, dumpTrace)
			return nil
		})
		g.Go(func() error {
			batchOut = p.Run(input)
			return nil
		})
		if err := g.Wait(); err != nil {
			fatalf("%v", err)
		}
	} else {
		trace = runRat(p, input, dumpTrace)
	}

	out := trace.Output()

	if verify {
		if err := compare(batchOut, out); err != nil {
			fatalf("verify: %v", err)
		}
		if *verbose {
			log.Printf("verify: batch and rat outputs identical (%d records)", len(out))
		}
	}

	if err := writeOutput(outPath, out); err != nil {
		fatalf("%v", err)
	}

	fmt.Fprintf(os.Stderr, "Processed %d -> %d records\n", len(input), len(out))
	if *verbose {
		log.Printf("completed in %s (steps=%d records=%d flushes=%d)",
			time.Since(start).Truncate(time.Millisecond),
			trace.Steps(), len(trace.RecordTraces), len(trace.FlushTraces))
	}
}

// runRat steps the RAT executor to completion, optionally dumping every step's
// pipe points to stderr as they are produced.
func runRat(p *pipeline.Pipeline, input []record.Record, dump bool) pipeline.RatDebugTrace {
	ex := p.StartRat(input)
	if !dump {
		return ex.RunAll()
	}

	names := append([]string{"<input>"}, stageNames(p)...)
	for {
		res := ex.Step()
		if res.Kind == pipeline.StepNone {
			break
		}
		switch res.Kind {
		case pipeline.StepRecord:
			fmt.Fprintf(os.Stderr, "step %d record:\n", ex.CurrentStep())
			dumpPoints(res.Record.PipePoints, names, 0)
		case pipeline.StepFlush:
			fmt.Fprintf(os.Stderr, "step %d flush stage %d (%s):\n",
				ex.CurrentStep(), res.Flush.StageIndex, stageNames(p)[res.Flush.StageIndex])
			dumpPoints(res.Flush.PipePoints, names, res.Flush.StageIndex+1)
		}
	}
	return ex.Trace()
}

// dumpPoints prints one trace entry's pipe points. offset aligns the point
// labels for flush traces, whose first point belongs to the originating stage.
func dumpPoints(points [][]record.Record, names []string, offset int) {
	for i, pt := range points {
		label := names[offset+i]
		if len(pt) == 0 {
			fmt.Fprintf(os.Stderr, "  %-40s (empty)\n", label)
			continue
		}
		for _, rec := range pt {
			fmt.Fprintf(os.Stderr, "  %-40s %q\n", label, rec.String())
		}
	}
}

func stageNames(p *pipeline.Pipeline) []string {
	return p.StageNames()
}

// compare checks two record slices for byte equality.
func compare(batch, rat []record.Record) error {
	if len(batch) != len(rat) {
		return fmt.Errorf("output length mismatch: batch=%d rat=%d", len(batch), len(rat))
	}
	for i := range batch {
		if batch[i] != rat[i] {
			return fmt.Errorf("output mismatch at record %d: batch=%q rat=%q",
				i, batch[i].String(), rat[i].String())
		}
	}
	return nil
}

// loadPipeline reads and compiles a pipeline script.
func loadPipeline(path string) (*pipeline.Pipeline, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pipeline: %w", err)
	}
	cmds, err := dsl.Parse(string(text))
	if err != nil {
		return nil, fmt.Errorf("parse pipeline %s: %w", path, err)
	}
	p, err := pipeline.Compile(cmds)
	if err != nil {
		return nil, fmt.Errorf("compile pipeline %s: %w", path, err)
	}
	return p, nil
}

// loadRecords reads a data file into fixed-width records, optionally folding
// accented characters to ASCII first.
func loadRecords(path string, fold bool) ([]record.Record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}
	text := string(raw)
	if fold {
		text = record.FoldASCII(text)
	}
	return record.FromLines(text), nil
}

// writeOutput renders records to the given path, or stdout when path is empty.
func writeOutput(path string, recs []record.Record) error {
	rendered := record.Render(recs)
	if path == "" {
		if _, err := fmt.Fprintln(os.Stdout, rendered); err != nil {
			return fmt.Errorf("write stdout: %w", err)
		}
		return nil
	}
	if err := os.WriteFile(path, []byte(rendered+"\n"), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: pipe-run-rat [flags] <pipeline.pipe> <input.data>\n")
	flag.PrintDefaults()
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
