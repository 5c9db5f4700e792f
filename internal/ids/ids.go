package ids

import "github.com/segmentio/ksuid"

// New returns a new sortable unique identifier. KSUIDs embed a timestamp,
// so creation order and lexicographic order agree.
func New() string {
	return ksuid.New().String()
}
