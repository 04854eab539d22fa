// Command pasm assembles a POC-8 source file into a binary image.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Zorby-dev/poc/asm"
	"github.com/Zorby-dev/poc/config"
	"github.com/Zorby-dev/poc/diag"
	"github.com/Zorby-dev/poc/source"
)

// Version is overridden at build time with -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("pasm", flag.ContinueOnError)

	var output string
	fs.StringVar(&output, "o", "", "output file (default: input with .bin extension)")
	fs.StringVar(&output, "output", "", "output file (default: input with .bin extension)")

	var imageSizeFlag string
	fs.StringVar(&imageSizeFlag, "s", "", "size of the output image in bytes (default: config image_size)")
	fs.StringVar(&imageSizeFlag, "image-size", "", "size of the output image in bytes (default: config image_size)")

	var verbose bool
	fs.BoolVar(&verbose, "v", false, "toggle verbose reporting")
	fs.BoolVar(&verbose, "verbose", false, "toggle verbose reporting")

	showVersion := fs.Bool("version", false, "show version information")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *showVersion {
		fmt.Println("pasm", Version)
		return 0
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: pasm [flags] <input>")
		fs.PrintDefaults()
		return 2
	}

	inputPath := fs.Arg(0)
	outputPath := output
	if outputPath == "" {
		ext := filepath.Ext(inputPath)
		outputPath = strings.TrimSuffix(inputPath, ext) + ".bin"
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "pasm:", err)
		return 1
	}

	imageSize := cfg.Assemble.ImageSize
	if imageSizeFlag != "" {
		n, err := strconv.Atoi(imageSizeFlag)
		if err != nil {
			fmt.Fprintln(os.Stderr, "pasm: invalid -s/--image-size value:", err)
			return 2
		}
		imageSize = n
	}

	verboseMode := verbose || cfg.Assemble.Verbose

	text, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "pasm:", err)
		return 1
	}

	if verboseMode {
		fmt.Println("lexing tokens...")
		fmt.Println("parsing nodes...")
		fmt.Println("compiling...")
	}

	src := source.New(inputPath, string(text))
	size := imageSize
	image, bag := asm.Assemble(src, &size)

	if bag.HasErrors() {
		var b strings.Builder
		bag.FormatAll(&b)
		fmt.Fprint(os.Stderr, b.String())
		fmt.Fprint(os.Stderr, diag.Summary(inputPath, len(bag.Errors)))
		return 1
	}

	var b strings.Builder
	for _, w := range bag.Warnings {
		w.Format(&b)
	}
	fmt.Fprint(os.Stderr, b.String())

	if err := os.WriteFile(outputPath, image, 0644); err != nil {
		fmt.Fprintln(os.Stderr, "pasm:", err)
		return 1
	}

	fmt.Printf("wrote %s into '%s'\n", diag.HumanCount("byte", len(image)), outputPath)
	return 0
}
