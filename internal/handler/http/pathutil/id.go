package pathutil

import (
	"errors"

	"github.com/google/uuid"
)

// ErrInvalidID is returned when a path identifier is not a UUID.
var ErrInvalidID = errors.New("invalid id")

// ParseID validates a digest id taken from the path and returns it in
// canonical lower-case form.
//
//	id, err := ParseID(r.PathValue("id"))
func ParseID(raw string) (string, error) {
	id, err := uuid.Parse(raw)
	if err != nil || len(raw) != 36 {
		return "", ErrInvalidID
	}
	return id.String(), nil
}
