package model

import (
	"fmt"

	"github.com/google/uuid"
)

// NewID builds a prefixed record id, e.g. "dep_6f1b...". The prefix keeps
// ids recognizable in logs and support tooling.
func NewID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, uuid.NewString())
}
