// Command pemu runs a POC-8 binary image on the CPU/device emulator.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Zorby-dev/poc/config"
	"github.com/Zorby-dev/poc/loader"
	"github.com/Zorby-dev/poc/monitor"
	"github.com/Zorby-dev/poc/vm"
)

// Version is overridden at build time with -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("pemu", flag.ContinueOnError)

	var imagePath string
	fs.StringVar(&imagePath, "i", "", "binary image to load (default: zero-filled RAM)")
	fs.StringVar(&imagePath, "image", "", "binary image to load (default: zero-filled RAM)")

	// debug is reserved: accepted for interface compatibility but not
	// consulted anywhere, preserved from the original's unused field.
	var debug bool
	fs.BoolVar(&debug, "d", false, "debug flag (reserved)")
	fs.BoolVar(&debug, "debug", false, "debug flag (reserved)")

	configPath := fs.String("config", "", "path to a TOML settings file (default: platform config path)")
	dumpSnapshot := fs.Bool("dump-snapshot", false, "open the post-halt snapshot inspector when the machine stops")
	showVersion := fs.Bool("version", false, "show version information")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *showVersion {
		fmt.Println("pemu", Version)
		return 0
	}

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFrom(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "pemu:", err)
		return 1
	}

	var image []byte
	if imagePath != "" {
		image, err = loader.LoadImage(imagePath, cfg.Machine.RAMSize)
		if err != nil {
			fmt.Fprintln(os.Stderr, "pemu:", err)
			return 1
		}
	} else {
		image = make([]byte, cfg.Machine.RAMSize)
	}

	machine := loader.Build(image, cfg)

	drainSerial(machine.Serial)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = machine.VM.Run(ctx)
	switch {
	case err == nil:
		fmt.Println("halted")
	case err == context.Canceled:
		fmt.Println("interrupted")
	default:
		fmt.Fprintln(os.Stderr, "pemu:", err)
		if !(*dumpSnapshot && cfg.Monitor.Enabled) {
			return 1
		}
	}

	if *dumpSnapshot && cfg.Monitor.Enabled {
		ins := monitor.New(machine.VM.Snapshot(), cfg.Monitor.BytesPerLine)
		if runErr := ins.Run(); runErr != nil {
			fmt.Fprintln(os.Stderr, "pemu: inspector:", runErr)
			return 1
		}
	}

	if err != nil {
		return 1
	}
	return 0
}

// drainSerial discards every byte the machine writes to its serial
// port, on a background goroutine; pemu does not display serial output.
func drainSerial(serial *vm.Serial) {
	go func() {
		for range serial.Out {
		}
	}()
}
