package session

import (
	"strings"

	"github.com/google/uuid"
)

const tokenLength = 10

// NewToken generates an opaque session token: a uuid4 with dashes stripped,
// truncated to 10 alphanumeric characters. Collisions are negligible at
// classroom scale and the primary key rejects them outright.
func NewToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:tokenLength]
}
