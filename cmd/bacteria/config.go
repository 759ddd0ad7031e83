package main

import (
	"flag"
	"fmt"
	"os"
	"time"
)

// Config defines program configuration.
type Config struct {
	Program string // Optional champion program to seed brains from.
	Ticks   uint64 // Number of ticks to run; 0 means run forever.
	Report  uint64 // Tick interval between stats reports.
	Seed    int64  // RNG seed; 0 picks one from the clock.
	Debug   bool   // Enable debug log output?
}

// parseArgs parses command line arguments as applicable.
//
// If an error occurred, this exits the program with an appropriate message.
// When version information is requested, it is printed to stdout and the
// program ends cleanly.
func parseArgs() *Config {
	var c Config
	c.Report = 600

	flag.Usage = func() {
		fmt.Printf("%s [options] [program file]\n", os.Args[0])
		flag.PrintDefaults()
	}

	flag.Uint64Var(&c.Ticks, "ticks", c.Ticks, "Number of ticks to run. 0 runs forever.")
	flag.Uint64Var(&c.Report, "report", c.Report, "Tick interval between stats reports.")
	flag.Int64Var(&c.Seed, "seed", c.Seed, "RNG seed. 0 picks one from the clock.")
	flag.BoolVar(&c.Debug, "debug", c.Debug, "Enable debug log output.")

	version := flag.Bool("version", false, "Display version information.")
	flag.Parse()

	if *version {
		fmt.Println(Version())
		os.Exit(0)
	}

	if flag.NArg() > 0 {
		c.Program = flag.Arg(0)
	}

	if c.Seed == 0 {
		c.Seed = time.Now().UnixNano()
	}
	return &c
}
