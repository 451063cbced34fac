package purchase

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewOrderNumber builds a human-scannable order number: a date stamp plus a
// short random suffix, e.g. PO-20260829-4F21A0. Uniqueness is enforced by
// the database constraint; the suffix only makes collisions unlikely.
func NewOrderNumber(now time.Time) string {
	id := uuid.New()
	return fmt.Sprintf("PO-%s-%X", now.UTC().Format("20060102"), id[:3])
}
