package trace

import (
	"errors"
	"fmt"
)

// Structural errors. Any of these aborts a load.
var (
	// ErrUnknownFormat indicates the document is neither a seat trace nor a grid trace.
	ErrUnknownFormat = errors.New("trace: unknown format")

	// ErrMissingKey indicates a required key is absent.
	ErrMissingKey = errors.New("trace: missing required key")

	// ErrLengthMismatch indicates per-frame arrays that disagree on the step count.
	ErrLengthMismatch = errors.New("trace: per-frame length mismatch")

	// ErrEmptyTrace indicates a trace with no seats, no frames or zero steps.
	ErrEmptyTrace = errors.New("trace: empty trace")

	// ErrEmptyGrid indicates a grid frame with no cells.
	ErrEmptyGrid = errors.New("trace: empty grid")

	// ErrJaggedGrid indicates grid frames that are not all nx by ny.
	ErrJaggedGrid = errors.New("trace: jagged grid")

	// ErrUnknownOccupant indicates a seat or cell occupied by an id missing from the agents.
	ErrUnknownOccupant = errors.New("trace: occupant not in agent set")

	// ErrBadAdjacency indicates a next-seat reference outside the seat list.
	ErrBadAdjacency = errors.New("trace: bad seat adjacency")
)

// ParseError locates a structural error inside the document.
type ParseError struct {
	Path    string
	Detail  string
	Wrapped error
}

func (e *ParseError) Error() string {
	msg := e.Wrapped.Error()
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Wrapped
}

func parseErr(sentinel error, path, format string, args ...any) error {
	return &ParseError{Path: path, Detail: fmt.Sprintf(format, args...), Wrapped: sentinel}
}

// Warning records a per-agent, per-step record that could not be used. The
// renderer substitutes a placeholder for it.
type Warning struct {
	Step   int     `json:"step"`
	Agent  AgentID `json:"agent"`
	Reason string  `json:"reason"`
}

func (w Warning) String() string {
	return fmt.Sprintf("t=%d agent %s: %s", w.Step, w.Agent, w.Reason)
}
