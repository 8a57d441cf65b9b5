package sim

import (
	"flappyevo/internal/env"
	"flappyevo/internal/ga"
)

// AgentView is the read-only per-agent state handed to presentation sinks
type AgentView struct {
	ID         int     `json:"id"`
	Position   float32 `json:"y"`
	Velocity   float32 `json:"vy"`
	Alive      bool    `json:"alive"`
	Fitness    float32 `json:"fitness"`
	Origin     string  `json:"origin"`
	ParentRank int     `json:"parent_rank"` // 0 marks descendants of the previous best
}

// Frame is a full snapshot of one tick
type Frame struct {
	Mode       string         `json:"mode"`
	Generation int            `json:"generation"`
	Tick       int            `json:"tick"`
	AgentX     float32        `json:"agent_x"`
	Alive      int            `json:"alive"`
	Obstacles  []env.Obstacle `json:"obstacles"`
	Agents     []AgentView    `json:"agents"`
}

func viewOf(a *ga.Agent) AgentView {
	return AgentView{
		ID:         a.ID,
		Position:   a.Position,
		Velocity:   a.Velocity,
		Alive:      a.Alive,
		Fitness:    a.Fitness,
		Origin:     a.Origin.String(),
		ParentRank: a.ParentRank,
	}
}

func viewsOf(agents []*ga.Agent) []AgentView {
	views := make([]AgentView, len(agents))
	for i, a := range agents {
		views[i] = viewOf(a)
	}
	return views
}
