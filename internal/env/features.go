package env

import "flappyevo/internal/nn"

// Nearest returns the closest obstacle at or ahead of agentX. Obstacles already
// passed are ignored. ok is false when nothing is ahead.
//
// The scan is O(obstacles). Every agent shares the same x, so callers compute
// it once per tick rather than once per agent.
func Nearest(obstacles []Obstacle, agentX float32) (nearest Obstacle, ok bool) {
	best := float32(0)
	for _, o := range obstacles {
		d := o.X - agentX
		if d < 0 {
			continue
		}
		if !ok || d < best {
			nearest, best, ok = o, d, true
		}
	}
	return nearest, ok
}

// Sensors builds the brain input vector for an agent and its nearest obstacle:
// position, velocity, horizontal distance, gap offset
func Sensors(pos, vel, agentX float32, o Obstacle) [nn.NumInputs]float32 {
	return [nn.NumInputs]float32{
		pos,
		vel,
		o.X - agentX,
		o.Gap - pos,
	}
}
