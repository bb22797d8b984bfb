package util

import "github.com/google/uuid"

// NewAccessCode generates a short readable code for authority join requests.
// The first 8 characters of a UUID keep codes easy to read out over the phone.
func NewAccessCode() string {
	return uuid.NewString()[:8]
}
