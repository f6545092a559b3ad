// Package uuid generates unique names for throwaway resources.
package uuid

import (
	google_uuid "github.com/google/uuid"
)

// MustUUID returns a random UUID string
func MustUUID() string {
	return google_uuid.New().String()
}
