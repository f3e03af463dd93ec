package postgres

import (
	"slices"
	"time"
)

// FindInBatches paginates with a primary-key cursor, so a custom ORDER BY
// would break its batching and drop rows. Scans run in id order and
// creation order is re-established here; the stable sort keeps the scan
// order for rows created in the same instant.
func sortByCreation[T any](list []T, createdAt func(T) time.Time) {
	slices.SortStableFunc(list, func(a, b T) int {
		return createdAt(a).Compare(createdAt(b))
	})
}
