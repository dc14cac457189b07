package uploader

// Bulk endpoint ceilings. Batch sizes are caller-tunable below these limits
// but never above them.
const (
	MediaBulkLimit       = 500
	MediaObjectBulkLimit = 5000
	AttributeBulkLimit   = 750
)

// chunk partitions items into consecutive slices of at most size elements.
// The last chunk may be shorter; a batch of exactly size is valid.
func chunk[T any](items []T, size int) [][]T {
	if size <= 0 || len(items) == 0 {
		return nil
	}
	batches := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[start:end])
	}
	return batches
}

func clampBatchSize(requested, ceiling int) int {
	if requested <= 0 || requested > ceiling {
		return ceiling
	}
	return requested
}
