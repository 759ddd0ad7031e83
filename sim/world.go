package sim

import (
	"math/rand"

	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("sim")

// World tuning parameters. The tick counts assume the original update
// cadence of 60 ticks per second.
const (
	InitialPopulation   = 20
	InitialFoodCount    = 15
	MinFoodCount        = 10
	FoodDistributionStd = 150.0
	MapBoundary         = 400.0

	FoodSpawnTicks = 120 // Periodic food spawn interval.
	RespawnTicks   = 300 // Minimum interval between rescue spawns.
	RespawnBatch   = 5   // Lifeforms added per rescue spawn.
	LowPopulation  = 10  // Population below which rescue spawns trigger.
)

// World owns the creatures and the food supply and advances them one
// tick at a time.
type World struct {
	Lifeforms  []*Lifeform
	Food       []Food
	Generation int

	rng            *rand.Rand
	ticksSinceFood int
	ticksSinceBorn int
}

// NewWorld creates a world with the initial population and food supply.
func NewWorld(rng *rand.Rand) *World {
	w := &World{rng: rng}

	for i := 0; i < InitialPopulation; i++ {
		x := rng.Float64()*400 - 200
		y := rng.Float64()*400 - 200
		w.Lifeforms = append(w.Lifeforms, NewLifeform(x, y, rng))
	}
	for i := 0; i < InitialFoodCount; i++ {
		w.Food = append(w.Food, w.newFood())
	}
	return w
}

// Update advances the world by one tick: every creature runs one brain
// instruction and acts, food is spawned and eaten, the dead are removed
// and the population is topped up when it runs low.
func (w *World) Update() {
	for _, l := range w.Lifeforms {
		l.Update(w.Food)
	}
	w.spawnFood()
	w.feed()
	w.removeDead()
	w.respawn()
}

// newFood places one food item using a normal distribution around the
// map center, clamped to the map bounds.
func (w *World) newFood() Food {
	return Food{
		X:      clampToMap(w.rng.NormFloat64() * FoodDistributionStd),
		Y:      clampToMap(w.rng.NormFloat64() * FoodDistributionStd),
		Energy: 20 + w.rng.Float64()*30,
	}
}

// spawnFood tops up the food supply, either periodically or immediately
// when it falls below the minimum.
func (w *World) spawnFood() {
	w.ticksSinceFood++

	periodic := w.ticksSinceFood >= FoodSpawnTicks
	if !periodic && len(w.Food) >= MinFoodCount {
		return
	}

	count := 1 + w.rng.Intn(3)
	if len(w.Food) < MinFoodCount {
		count += MinFoodCount - len(w.Food)
	}
	for i := 0; i < count; i++ {
		w.Food = append(w.Food, w.newFood())
	}
	w.ticksSinceFood = 0
}

// feed lets every creature consume the food items it touches.
func (w *World) feed() {
	for _, l := range w.Lifeforms {
		remaining := w.Food[:0]
		for _, f := range w.Food {
			if l.CanEat(f) {
				l.Eat(f)
			} else {
				remaining = append(remaining, f)
			}
		}
		w.Food = remaining
	}
}

// removeDead drops creatures that ran out of energy.
func (w *World) removeDead() {
	alive := w.Lifeforms[:0]
	for _, l := range w.Lifeforms {
		if l.Alive() {
			alive = append(alive, l)
		}
	}
	if died := len(w.Lifeforms) - len(alive); died > 0 {
		log.Infof("generation %d: %d lifeforms died", w.Generation, died)
	}
	w.Lifeforms = alive
}

// respawn adds fresh random creatures when the population is low, and
// starts a new generation when it is extinct.
func (w *World) respawn() {
	w.ticksSinceBorn++

	due := w.ticksSinceBorn > RespawnTicks && len(w.Lifeforms) < LowPopulation
	if !due && len(w.Lifeforms) > 0 {
		return
	}

	if len(w.Lifeforms) == 0 {
		w.Generation++
		log.Infof("starting generation %d", w.Generation)
	}

	for i := 0; i < RespawnBatch; i++ {
		x := w.rng.Float64()*2*MapBoundary - MapBoundary
		y := w.rng.Float64()*2*MapBoundary - MapBoundary
		w.Lifeforms = append(w.Lifeforms, NewLifeform(x, y, w.rng))
	}
	w.ticksSinceBorn = 0
}

// clampToMap keeps a coordinate within the map bounds.
func clampToMap(v float64) float64 {
	if v < -MapBoundary {
		return -MapBoundary
	}
	if v > MapBoundary {
		return MapBoundary
	}
	return v
}
