// Package evo implements the evolutionary search over machine programs.
//
// The search is a hill climb with a single global incumbent: fitness is
// the number of instructions a program survives before halting or
// stalling, mutation rewrites 1-10% of the genome, and there is no
// crossover. A finished run replaces the champion only when it strictly
// beats it.
package evo

import (
	"math/rand"
	"sync"

	"github.com/op/go-logging"

	"github.com/Wint3rmute/bacteria-vm/vm"
)

var log = logging.MustGetLogger("evo")

// saveQueueDepth bounds the backlog of champions awaiting persistence.
// Champions supersede each other, so dropping under pressure is safe.
const saveQueueDepth = 16

// Store persists champion genomes. Save failures are logged by the
// driver and never interrupt the search.
type Store interface {
	Save(genome []byte) error
}

// Stats counts driver activity since creation.
type Stats struct {
	Ticks  uint64 // Population sweeps performed.
	Halts  uint64 // Finished runs observed.
	Stalls uint64 // Finished runs that were stall-halted (zero fitness).
}

// Driver owns a fixed population of machines and the champion record.
// Each Tick steps every machine once; halted machines are scored,
// possibly promoted to champion, and reseeded in place.
//
// All methods must be called from a single goroutine. Persistence runs
// on a background goroutine so a slow disk never blocks stepping.
type Driver struct {
	machines []*vm.Machine
	rng      *rand.Rand
	store    Store
	best     *Champion
	stats    Stats

	saves chan []byte
	wg    sync.WaitGroup
}

// New creates a driver with the given population size and seeds every
// machine with a fully random program. The store may be nil, in which
// case champions are tracked but never persisted. The trace handler is
// shared by all machines and may be nil.
func New(size int, store Store, rng *rand.Rand, trace vm.TraceFunc) *Driver {
	d := &Driver{
		machines: make([]*vm.Machine, size),
		rng:      rng,
		store:    store,
		saves:    make(chan []byte, saveQueueDepth),
	}

	for i := range d.machines {
		m := vm.New(trace)
		m.Randomize(rng)
		d.machines[i] = m
	}

	d.wg.Add(1)
	go d.saver()
	return d
}

// Close flushes pending champion saves and stops the background writer.
func (d *Driver) Close() {
	close(d.saves)
	d.wg.Wait()
}

// Size returns the population size.
func (d *Driver) Size() int {
	return len(d.machines)
}

// Stats returns a snapshot of the driver's activity counters.
func (d *Driver) Stats() Stats {
	return d.stats
}

// Best returns the current champion, or nil if no run has finished with
// a nonzero step count yet. The returned genome is a copy.
func (d *Driver) Best() *Champion {
	if d.best == nil {
		return nil
	}
	c := *d.best
	c.Genome = make([]byte, len(d.best.Genome))
	copy(c.Genome, d.best.Genome)
	return &c
}

// Tick advances every machine by one instruction, in population order,
// then scores and reseeds the ones that halted.
func (d *Driver) Tick() {
	d.stats.Ticks++

	for _, m := range d.machines {
		m.Step()
	}
	for _, m := range d.machines {
		if m.Halted() {
			d.observeHalt(m)
		}
	}
}

// observeHalt scores a finished run and reseeds the machine: mutate
// from the champion when one exists, full random restart otherwise.
func (d *Driver) observeHalt(m *vm.Machine) {
	d.stats.Halts++
	steps := m.Steps()
	if steps == 0 {
		d.stats.Stalls++
	}

	d.record(m.Genome(), steps)

	if d.best != nil {
		m.LoadProgram(d.best.Genome)
		m.PartialRandomize(d.rng)
	} else {
		m.Randomize(d.rng)
	}
}

// record promotes the given genome to champion if its fitness strictly
// beats the incumbent. Returns true when the champion was replaced.
func (d *Driver) record(genome []byte, fitness int) bool {
	if fitness <= d.Fitness() {
		return false
	}

	c := &Champion{
		Genome:      genome,
		Fitness:     fitness,
		Fingerprint: fingerprint(genome),
	}

	// A mutation can land on identical byte values; don't rewrite the
	// same image to disk.
	same := d.best != nil && c.Fingerprint == d.best.Fingerprint
	d.best = c

	log.Infof("new champion: fitness=%d genome=%s", c.Fitness, c.ShortID())

	if !same {
		d.enqueueSave(genome)
	}
	return true
}

// Fitness returns the champion's fitness, or 0 if there is none.
func (d *Driver) Fitness() int {
	if d.best == nil {
		return 0
	}
	return d.best.Fitness
}

// enqueueSave hands a genome to the background writer. If the backlog
// is full the save is skipped; a later champion will replace it anyway.
func (d *Driver) enqueueSave(genome []byte) {
	if d.store == nil {
		return
	}
	select {
	case d.saves <- genome:
	default:
		log.Warningf("champion save backlog full, skipping save")
	}
}

// saver persists champions until the save queue is closed.
func (d *Driver) saver() {
	defer d.wg.Done()
	for genome := range d.saves {
		if err := d.store.Save(genome); err != nil {
			log.Errorf("saving champion: %v", err)
		}
	}
}
