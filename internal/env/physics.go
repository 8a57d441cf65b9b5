package env

// Physics is the one-dimensional gravity integrator shared by every agent
type Physics struct {
	Gravity float32 // downward acceleration, units per second squared
	Thrust  float32 // velocity set by a flap
}

// Integrate advances vertical position and velocity by dt seconds
func (p Physics) Integrate(pos, vel, dt float32) (float32, float32) {
	vel -= p.Gravity * dt
	pos += vel * dt
	return pos, vel
}
