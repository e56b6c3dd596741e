// Package main is the batch pipeline runner. It reads a pipeline script and a
// fixed-width data file, runs the pipeline in one pass, and writes the output
// records to stdout or a file.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"recpipe/internal/dsl"
	"recpipe/internal/pipeline"
	"recpipe/internal/record"
)

func main() {
	var (
		outPath string
		fold    bool
	)

	flag.StringVar(&outPath, "o", "", "output file path (default stdout)")
	flag.BoolVar(&fold, "fold", false, "fold accented input characters to plain ASCII before processing")
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
		log.Printf("pipeline: stages=%d input_records=%d", p.StageCount(), len(input))
	}

	out := p.Run(input)

	if err := writeOutput(outPath, out); err != nil {
		fatalf("%v", err)
	}

	fmt.Fprintf(os.Stderr, "Processed %d -> %d records\n", len(input), len(out))
	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
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
// Stdout output always ends with a newline so it composes in shells.
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
	fmt.Fprintf(os.Stderr, "usage: pipe-run [flags] <pipeline.pipe> <input.data>\n")
	flag.PrintDefaults()
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
