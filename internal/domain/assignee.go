package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

type assigneeKind uint8

const (
	assigneeHuman assigneeKind = iota
	assigneeAI
)

const (
	assigneeAIValue    = "ai"
	assigneeHumanValue = "human"
)

// Assignee identifies who performs a step: the AI, or a human.
// A human assignee may carry the username of the staff member; an
// empty username means "some human" without a specific person.
type Assignee struct {
	kind     assigneeKind
	username string
}

// AssignAI returns the AI assignee
func AssignAI() Assignee {
	return Assignee{kind: assigneeAI}
}

// AssignHuman returns a human assignee; username may be empty
func AssignHuman(username string) Assignee {
	return Assignee{kind: assigneeHuman, username: username}
}

// ParseAssignee converts the stored representation ("ai", "human" or a username)
func ParseAssignee(s string) Assignee {
	switch s {
	case assigneeAIValue:
		return AssignAI()
	case assigneeHumanValue, "":
		return AssignHuman("")
	default:
		return AssignHuman(s)
	}
}

func (a Assignee) IsAI() bool    { return a.kind == assigneeAI }
func (a Assignee) IsHuman() bool { return a.kind == assigneeHuman }

// Username returns the named human, or "" for the AI and unnamed humans
func (a Assignee) Username() string {
	return a.username
}

func (a Assignee) String() string {
	if a.kind == assigneeAI {
		return assigneeAIValue
	}
	if a.username == "" {
		return assigneeHumanValue
	}
	return a.username
}

func (a Assignee) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *Assignee) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("assignee must be a string: %w", err)
	}
	*a = ParseAssignee(s)
	return nil
}

// Value implements driver.Valuer
func (a Assignee) Value() (driver.Value, error) {
	return a.String(), nil
}

// Scan implements sql.Scanner
func (a *Assignee) Scan(src any) error {
	switch v := src.(type) {
	case string:
		*a = ParseAssignee(v)
	case []byte:
		*a = ParseAssignee(string(v))
	case nil:
		*a = AssignHuman("")
	default:
		return fmt.Errorf("cannot scan %T into Assignee", src)
	}
	return nil
}
