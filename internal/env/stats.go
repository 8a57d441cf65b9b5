package env

// DeathReason indicates how an agent died
type DeathReason int

const (
	DeathNone   DeathReason = iota
	DeathBounds             // left the playfield
	DeathPipe               // hit a pipe
	DeathTimeout            // generation tick cap reached
)

func (d DeathReason) String() string {
	switch d {
	case DeathNone:
		return "none"
	case DeathBounds:
		return "bounds"
	case DeathPipe:
		return "pipe"
	case DeathTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}
