// Package sim implements a headless world in which each creature is
// driven by an evolved machine program through memory-mapped I/O.
package sim

import (
	"math/rand"

	"github.com/Wint3rmute/bacteria-vm/vm"
)

// Memory-mapped addresses reserved at the top of a brain's memory bank.
// The machine treats them like any other cell; the world writes the
// sensor cells before each step and reads the actuator cells after.
const (
	FoodDistXAddr = vm.MemorySize - 6 // 250: X distance to nearest food.
	FoodDistYAddr = vm.MemorySize - 5 // 251: Y distance to nearest food.
	MoveLeftAddr  = vm.MemorySize - 4 // 252: Left movement strength.
	MoveRightAddr = vm.MemorySize - 3 // 253: Right movement strength.
	MoveUpAddr    = vm.MemorySize - 2 // 254: Up movement strength.
	MoveDownAddr  = vm.MemorySize - 1 // 255: Down movement strength.
)

// Neutral is the sensor byte meaning "no signal". Values below it point
// left/up, values above it point right/down.
const Neutral = 128

// Creature tuning parameters.
const (
	StartEnergy        = 100.0
	MaxEnergy          = 200.0
	EnergyDrainPerTick = 0.1
	MovementEnergyCost = 0.2
	MovementSpeed      = 1.0
	EatingRadius       = 12.0
	MaxFoodDetection   = 100.0 // Sensor range in world units.
	SensoryScale       = 2.0   // World distance to sensor value scale.
)

// EncodeDistance converts a relative world distance to a sensor byte:
// the distance is scaled, clamped to [-128,127] and biased by +128, so
// 0 means maximal negative, Neutral means zero and 255 maximal positive.
func EncodeDistance(d float64) byte {
	scaled := d * SensoryScale
	if scaled < -128 {
		scaled = -128
	}
	if scaled > 127 {
		scaled = 127
	}
	return byte(int(scaled + 128))
}

// Food is an energy source placed in the world.
type Food struct {
	X, Y   float64
	Energy float64
}

// Lifeform is a creature whose behavior is decided by a machine
// program: sensor cells tell it where food is, actuator cells move it.
type Lifeform struct {
	Brain  *vm.Machine
	X, Y   float64
	Energy float64
	Age    int
}

// NewLifeform creates a lifeform at the given position with a freshly
// randomized brain.
func NewLifeform(x, y float64, rng *rand.Rand) *Lifeform {
	m := vm.New(nil)
	m.Randomize(rng)
	return FromBrain(m, x, y)
}

// FromBrain wraps an existing machine, for example one loaded from a
// saved champion program.
func FromBrain(m *vm.Machine, x, y float64) *Lifeform {
	return &Lifeform{
		Brain:  m,
		X:      x,
		Y:      y,
		Energy: StartEnergy,
	}
}

// Update runs one world tick for the lifeform: refresh the sensor
// cells, restart the brain if it halted, execute one instruction and
// act on the actuator cells.
func (l *Lifeform) Update(food []Food) {
	l.updateSensors(food)
	if l.Brain.Halted() {
		l.Brain.Restart()
	}
	l.Brain.Step()
	l.processMovement()
	l.Age++
	l.Energy -= EnergyDrainPerTick
}

// updateSensors writes the encoded distance to the nearest food into
// the sensor cells, or Neutral when nothing is in range.
func (l *Lifeform) updateSensors(food []Food) {
	mem := l.Brain.Memory()

	dx, dy, ok := l.nearestFood(food)
	if !ok {
		mem.SetU8(FoodDistXAddr, Neutral)
		mem.SetU8(FoodDistYAddr, Neutral)
		return
	}
	mem.SetU8(FoodDistXAddr, EncodeDistance(dx))
	mem.SetU8(FoodDistYAddr, EncodeDistance(dy))
}

// nearestFood returns the relative position of the closest food within
// sensor range. ok is false when nothing is detectable.
func (l *Lifeform) nearestFood(food []Food) (dx, dy float64, ok bool) {
	best := MaxFoodDetection * MaxFoodDetection
	for _, f := range food {
		fx := f.X - l.X
		fy := f.Y - l.Y
		if d := fx*fx + fy*fy; d < best {
			best = d
			dx, dy, ok = fx, fy, true
		}
	}
	return dx, dy, ok
}

// processMovement moves the creature along each axis toward whichever
// opposing actuator cell holds the larger value. Equal values mean no
// movement on that axis.
func (l *Lifeform) processMovement() {
	mem := l.Brain.Memory()

	left := mem.U8(MoveLeftAddr)
	right := mem.U8(MoveRightAddr)
	up := mem.U8(MoveUpAddr)
	down := mem.U8(MoveDownAddr)

	if left > right {
		l.move(-MovementSpeed, 0)
	} else if right > left {
		l.move(MovementSpeed, 0)
	}
	if up > down {
		l.move(0, -MovementSpeed)
	} else if down > up {
		l.move(0, MovementSpeed)
	}
}

// move displaces the creature and charges the movement energy cost.
func (l *Lifeform) move(dx, dy float64) {
	l.X += dx
	l.Y += dy
	l.Energy -= MovementEnergyCost
}

// Alive reports whether the creature still has energy. A halted brain
// does not kill it; brains are restarted on the next update.
func (l *Lifeform) Alive() bool {
	return l.Energy > 0
}

// CanEat reports whether the given food is within eating distance.
func (l *Lifeform) CanEat(f Food) bool {
	dx := l.X - f.X
	dy := l.Y - f.Y
	return dx*dx+dy*dy <= EatingRadius*EatingRadius
}

// Eat consumes the food, gaining its energy up to the cap.
func (l *Lifeform) Eat(f Food) {
	l.Energy += f.Energy
	if l.Energy > MaxEnergy {
		l.Energy = MaxEnergy
	}
}
