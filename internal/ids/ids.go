package ids

import "github.com/segmentio/ksuid"

// New returns a K-sortable unique ID for entities.
func New() string {
	return ksuid.New().String()
}
