package main

import (
	"flag"
	"fmt"
	"os"
	"time"
)

// Config defines program configuration.
type Config struct {
	Population int    // Number of machines evolving in parallel.
	Save       string // Path the champion program is saved to.
	Ticks      uint64 // Number of ticks to run; 0 means run forever.
	Report     uint64 // Tick interval between stats reports.
	Seed       int64  // RNG seed; 0 picks one from the clock.
	Trace      bool   // Print instruction trace data?
	Debug      bool   // Enable debug log output?
}

// parseArgs parses command line arguments as applicable.
//
// If an error occurred, this exits the program with an appropriate message.
// When version information is requested, it is printed to stdout and the
// program ends cleanly.
func parseArgs() *Config {
	var c Config
	c.Population = 24
	c.Save = "best_vm_program.bin"
	c.Report = 100000

	flag.Usage = func() {
		fmt.Printf("%s [options]\n", os.Args[0])
		flag.PrintDefaults()
	}

	flag.IntVar(&c.Population, "population", c.Population, "Number of machines evolving in parallel.")
	flag.StringVar(&c.Save, "save", c.Save, "File the best program is saved to.")
	flag.Uint64Var(&c.Ticks, "ticks", c.Ticks, "Number of ticks to run. 0 runs forever.")
	flag.Uint64Var(&c.Report, "report", c.Report, "Tick interval between stats reports.")
	flag.Int64Var(&c.Seed, "seed", c.Seed, "RNG seed. 0 picks one from the clock.")
	flag.BoolVar(&c.Trace, "trace", c.Trace, "Print instruction trace data.")
	flag.BoolVar(&c.Debug, "debug", c.Debug, "Enable debug log output.")

	version := flag.Bool("version", false, "Display version information.")
	flag.Parse()

	if *version {
		fmt.Println(Version())
		os.Exit(0)
	}

	if c.Population < 1 {
		fmt.Fprintln(os.Stderr, "population must be at least 1")
		os.Exit(1)
	}

	if c.Seed == 0 {
		c.Seed = time.Now().UnixNano()
	}
	return &c
}
