package models

import (
	"errors"
	"strings"
)

// Item represents a single todo entry.
type Item struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// Validate checks that the item has valid field values.
func (i *Item) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return errors.New("name is required")
	}
	return nil
}

// ItemUpdate describes a partial update to an item. Nil fields are
// left unchanged.
type ItemUpdate struct {
	Name      *string `json:"name,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// Empty returns true if the update would change nothing.
func (u ItemUpdate) Empty() bool {
	return u.Name == nil && u.Completed == nil
}
