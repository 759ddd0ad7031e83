package main

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/op/go-logging"

	"github.com/Wint3rmute/bacteria-vm/evo"
	"github.com/Wint3rmute/bacteria-vm/vm"
)

var log = logging.MustGetLogger("evolve")

func main() {
	config := parseArgs()
	initLogging(config.Debug)

	log.Infof("%s", Version())
	log.Infof("population=%d seed=%d save=%q", config.Population, config.Seed, config.Save)

	var trace vm.TraceFunc
	if config.Trace {
		trace = func(line string) { fmt.Println(line) }
	}

	rng := rand.New(rand.NewSource(config.Seed))
	driver := evo.New(config.Population, evo.FileStore{Path: config.Save}, rng, trace)
	defer driver.Close()

	for tick := uint64(1); config.Ticks == 0 || tick <= config.Ticks; tick++ {
		driver.Tick()

		if tick%config.Report == 0 {
			report(driver)
		}
	}

	report(driver)
}

// report logs a stats snapshot and the current champion.
func report(driver *evo.Driver) {
	stats := driver.Stats()

	if best := driver.Best(); best != nil {
		log.Infof("ticks=%d halts=%d stalls=%d best=%d genome=%s",
			stats.Ticks, stats.Halts, stats.Stalls, best.Fitness, best.ShortID())
	} else {
		log.Infof("ticks=%d halts=%d stalls=%d best=none",
			stats.Ticks, stats.Halts, stats.Stalls)
	}
}

// initLogging routes all module loggers to stderr.
func initLogging(debug bool) {
	format := logging.MustStringFormatter(
		`%{time:15:04:05.000} %{module} %{level:.4s} %{message}`)

	backend := logging.AddModuleLevel(
		logging.NewBackendFormatter(logging.NewLogBackend(os.Stderr, "", 0), format))

	level := logging.INFO
	if debug {
		level = logging.DEBUG
	}
	backend.SetLevel(level, "")
	logging.SetBackend(backend)
}
