// internal/engine/traversal/models.go
package traversal

// Commands recognized at every node before option matching.
const (
	CommandExit    = "exit"
	CommandQuit    = "quit"
	CommandRestart = "restart"
	CommandSwitch  = "switch"
	CommandMenu    = "menu"
)

// Reasons a session ends.
const (
	EndExit      = "exit"
	EndEOF       = "eof"
	EndCancelled = "cancelled"
)

// Summary describes a finished session. Turns counts lines answered at a
// node prompt; Path is the node the session ended on.
type Summary struct {
	SessionID string
	Turns     int
	Invalid   int
	EndReason string
	Path      string
}
