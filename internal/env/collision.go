package env

// Bounds holds the playfield limits and pipe tolerances used by the termination check
type Bounds struct {
	Top            float32
	Bottom         float32
	AlignTolerance float32 // horizontal window in which an agent is inside a pipe
	GapTolerance   float32 // allowed vertical offset from the gap centre
}

// Check reports why an agent at (agentX, pos) dies this tick, or DeathNone
func (b Bounds) Check(pos, agentX float32, obstacles []Obstacle) DeathReason {
	if pos > b.Top || pos < b.Bottom {
		return DeathBounds
	}
	for _, o := range obstacles {
		if abs(o.X-agentX) >= b.AlignTolerance {
			continue
		}
		if abs(pos-o.Gap) > b.GapTolerance {
			return DeathPipe
		}
	}
	return DeathNone
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
