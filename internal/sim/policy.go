package sim

import (
	"flappyevo/internal/env"
	"flappyevo/internal/ga"
)

// Action is the binary decision taken by an agent each tick
type Action int

const (
	ActionNone Action = iota
	ActionThrust
)

func (a Action) String() string {
	if a == ActionThrust {
		return "thrust"
	}
	return "none"
}

// Decide runs the agent's brain against its nearest upcoming obstacle.
// Without an obstacle ahead the agent is reset to rest and does nothing.
// Thrust wins only when output 0 is strictly greater than output 1.
func Decide(a *ga.Agent, agentX float32, nearest env.Obstacle, ok bool) Action {
	if !ok {
		a.Position = 0
		a.Velocity = 0
		return ActionNone
	}

	out := a.Brain.Think(env.Sensors(a.Position, a.Velocity, agentX, nearest))
	if out[0] > out[1] {
		return ActionThrust
	}
	return ActionNone
}
