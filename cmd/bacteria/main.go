package main

import (
	"math/rand"
	"os"

	"github.com/op/go-logging"

	"github.com/Wint3rmute/bacteria-vm/program"
	"github.com/Wint3rmute/bacteria-vm/sim"
	"github.com/Wint3rmute/bacteria-vm/vm"
)

var log = logging.MustGetLogger("bacteria")

func main() {
	config := parseArgs()
	initLogging(config.Debug)

	log.Infof("%s", Version())
	log.Infof("seed=%d", config.Seed)

	rng := rand.New(rand.NewSource(config.Seed))
	world := sim.NewWorld(rng)

	// A saved champion program, when given, replaces the brains of the
	// initial population. A missing or short file is a startup error.
	if config.Program != "" {
		p, err := program.LoadFile(config.Program)
		if err != nil {
			log.Fatalf("loading %s: %v", config.Program, err)
		}
		log.Infof("seeding %d brains from %s", len(world.Lifeforms), config.Program)

		for _, l := range world.Lifeforms {
			brain := vm.New(nil)
			brain.LoadProgram(p)
			l.Brain = brain
		}
	}

	for tick := uint64(1); config.Ticks == 0 || tick <= config.Ticks; tick++ {
		world.Update()

		if tick%config.Report == 0 {
			log.Infof("tick=%d generation=%d lifeforms=%d food=%d",
				tick, world.Generation, len(world.Lifeforms), len(world.Food))
		}
	}

	log.Infof("done: generation=%d lifeforms=%d food=%d",
		world.Generation, len(world.Lifeforms), len(world.Food))
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
