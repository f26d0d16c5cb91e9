package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation.
// Drill actions rely on the ordering: ids created later sort after earlier ones.
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	ActionID  ID
	SessionID ID
)

// RootActionID addresses the synthetic breadcrumb that sits below every drill step.
const RootActionID ActionID = "root"

func (id ActionID) String() string  { return ID(id).String() }
func (id SessionID) String() string { return ID(id).String() }

// IsRoot reports whether the id addresses the breadcrumb root.
func (id ActionID) IsRoot() bool { return id == RootActionID }

// NewActionID creates a fresh, time-ordered drill action id
func NewActionID() ActionID { return ActionID(NewID()) }

// NewSessionID creates a fresh drill session id
func NewSessionID() SessionID { return SessionID(NewID()) }

// ParseActionID parses a string into ActionID
func ParseActionID(s string) (ActionID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("action ID cannot be empty")
	}
	return ActionID(s), nil
}

// ParseSessionID parses a string into SessionID
func ParseSessionID(s string) (SessionID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("session ID cannot be empty")
	}
	return SessionID(s), nil
}
