// Package env is the host side of the game: the pipe field, the gravity
// integrator, the collision check and the sensor readings fed to brains.
package env

import (
	"math/rand"
	"sort"
)

// Obstacle is a pipe pair. X scrolls towards the agents; Gap is the vertical
// centre of the opening and never changes after spawn.
type Obstacle struct {
	X   float32 `json:"x"`
	Gap float32 `json:"gap"`
}

// PipeSettings controls spawning and scrolling of obstacles
type PipeSettings struct {
	Speed         float32 // horizontal scroll speed, units per second
	SpawnInterval float32 // seconds between spawns
	SpawnX        float32
	DespawnX      float32 // pipes left of this are dropped
	GapMin        float32
	GapMax        float32
}

// PipeField owns the live obstacles of one generation
type PipeField struct {
	settings  PipeSettings
	obstacles []Obstacle
	timer     float32 // seconds until next spawn
	rng       *rand.Rand
}

// NewPipeField creates an empty field. The first pipe spawns on the first update.
func NewPipeField(settings PipeSettings, rng *rand.Rand) *PipeField {
	return &PipeField{
		settings:  settings,
		obstacles: make([]Obstacle, 0, 8),
		rng:       rng,
	}
}

// Update spawns and scrolls pipes by dt seconds
func (f *PipeField) Update(dt float32) {
	f.timer -= dt
	if f.timer <= 0 {
		gap := f.settings.GapMin + (f.settings.GapMax-f.settings.GapMin)*f.rng.Float32()
		f.Add(Obstacle{X: f.settings.SpawnX, Gap: gap})
		f.timer = f.settings.SpawnInterval
	}

	kept := f.obstacles[:0]
	for _, o := range f.obstacles {
		o.X -= f.settings.Speed * dt
		if o.X >= f.settings.DespawnX {
			kept = append(kept, o)
		}
	}
	f.obstacles = kept
}

// Obstacles returns the live obstacles sorted by X ascending. The slice is
// owned by the field and must not be modified.
func (f *PipeField) Obstacles() []Obstacle {
	return f.obstacles
}

// Add inserts an obstacle directly, bypassing the spawn timer. X order is kept.
func (f *PipeField) Add(o Obstacle) {
	i := sort.Search(len(f.obstacles), func(i int) bool { return f.obstacles[i].X > o.X })
	f.obstacles = append(f.obstacles, Obstacle{})
	copy(f.obstacles[i+1:], f.obstacles[i:])
	f.obstacles[i] = o
}

// Clear drops every obstacle and resets the spawn timer
func (f *PipeField) Clear() {
	f.obstacles = f.obstacles[:0]
	f.timer = 0
}

// Len returns the number of live obstacles
func (f *PipeField) Len() int {
	return len(f.obstacles)
}
