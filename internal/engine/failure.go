package engine

import "time"

// Status enumerates the mission state machine.
type Status string

const (
	StatusIdle      Status = "Idle"
	StatusRunning   Status = "Running"
	StatusPaused    Status = "Paused"
	StatusFailed    Status = "Failed"
	StatusCompleted Status = "Completed"
)

// Terminal reports whether the status ends the current mission instance.
func (s Status) Terminal() bool {
	return s == StatusFailed || s == StatusCompleted
}

// Failure reason codes. The exact strings surface to the operator.
const (
	FailureOffCourse     = "Steered off course"
	FailureFuelExhausted = "Fuel exhausted"
	FailureCollision     = "Obstacle collision"
	FailureSurfaceShip   = "Collision with surface ship"
)

// Failure is the write-once terminal record of a mission. Once set it is
// never overwritten or cleared except by an explicit restart.
type Failure struct {
	Reason    string    `json:"reason"`
	Narrative string    `json:"narrative"`
	At        time.Time `json:"at"`
}
