package sim

import (
	"log/slog"
	"sync/atomic"

	"flappyevo/internal/env"
	"flappyevo/internal/ga"
)

// Human runs a single player-controlled agent. Thrust may be called from any
// goroutine; everything else belongs to the goroutine driving Advance.
type Human struct {
	settings Settings
	agent    ga.Agent
	pipes    *env.PipeField
	thrust   atomic.Bool

	tick     int
	attempts int
	best     float32

	logger *slog.Logger
}

// NewHuman creates a human-mode game on the given pipe field
func NewHuman(settings Settings, pipes *env.PipeField, logger *slog.Logger) *Human {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Human{
		settings: settings,
		pipes:    pipes,
		attempts: 1,
		logger:   logger,
	}
	h.agent.ParentRank = -1
	h.agent.Reset()
	return h
}

// Thrust requests a flap on the next tick. Repeated requests within one tick
// collapse into a single flap.
func (h *Human) Thrust() {
	h.thrust.Store(true)
}

// Advance runs one tick. When the player dies the attempt is logged and the
// game restarts with a clear runway.
func (h *Human) Advance(dt float32) AgentView {
	h.pipes.Update(dt)
	obstacles := h.pipes.Obstacles()
	a := &h.agent

	a.Position, a.Velocity = h.settings.Physics.Integrate(a.Position, a.Velocity, dt)
	if h.thrust.Swap(false) {
		a.Velocity = h.settings.Physics.Thrust
	}
	a.Fitness += dt
	h.tick++

	if reason := h.settings.Bounds.Check(a.Position, h.settings.AgentX, obstacles); reason != env.DeathNone {
		a.Kill(reason)
	}
	view := viewOf(a)

	if !a.Alive {
		if a.Fitness > h.best {
			h.best = a.Fitness
		}
		h.logger.Info("attempt_over",
			"attempt", h.attempts,
			"score", a.Fitness,
			"best", h.best,
			"death", a.Death.String(),
		)
		h.attempts++
		h.tick = 0
		a.Reset()
		h.pipes.Clear()
		h.thrust.Store(false)
	}
	return view
}

// Attempts returns the current attempt number, starting at 1
func (h *Human) Attempts() int {
	return h.attempts
}

// Best returns the best score so far
func (h *Human) Best() float32 {
	return h.best
}

// Frame returns a snapshot of the current tick for presentation
func (h *Human) Frame() Frame {
	alive := 0
	if h.agent.Alive {
		alive = 1
	}
	return Frame{
		Mode:       "human",
		Generation: h.attempts,
		Tick:       h.tick,
		AgentX:     h.settings.AgentX,
		Alive:      alive,
		Obstacles:  append([]env.Obstacle(nil), h.pipes.Obstacles()...),
		Agents:     []AgentView{viewOf(&h.agent)},
	}
}
