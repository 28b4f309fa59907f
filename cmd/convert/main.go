package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"trax/internal/qt"
)

func main() {
	var inPath, outPath string

	flag.StringVar(&inPath, "utt_json", "", "utt input json file (-i)")
	flag.StringVar(&inPath, "i", "", "utt input json file")
	flag.StringVar(&outPath, "output", "-", "output json file in the new format (-o), - for stdout")
	flag.StringVar(&outPath, "o", "-", "output json file in the new format")
	flag.Parse()

	if inPath == "" {
		fmt.Fprintln(os.Stderr, "missing --utt_json/-i input path")
		os.Exit(2)
	}

	if err := run(inPath, outPath); err != nil {
		fmt.Fprintf(os.Stderr, "convert: %v\n", err)
		os.Exit(1)
	}
}

func run(inPath, outPath string) error {
	in, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	defer in.Close()

	var out io.Writer = os.Stdout
	if outPath != "-" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer f.Close()
		out = f
	}

	n, err := qt.Convert(in, out)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %d words\n", n)
	return nil
}
