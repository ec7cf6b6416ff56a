// utils/utils.go

package utils

import (
	"github.com/google/uuid"
)

// GenerateUUIDString returns a random uuid used for connection and session ids.
func GenerateUUIDString() string {
	id := uuid.New()
	return id.String()
}
