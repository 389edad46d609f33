package enums

import "fmt"

// OrderBucket is the dashboard partition derived from an order's status.
type OrderBucket string

const (
	OrderBucketNeedsAction OrderBucket = "needs_action"
	OrderBucketInProgress  OrderBucket = "in_progress"
	OrderBucketCompleted   OrderBucket = "completed"
)

var validOrderBuckets = []OrderBucket{
	OrderBucketNeedsAction,
	OrderBucketInProgress,
	OrderBucketCompleted,
}

// String implements fmt.Stringer.
func (b OrderBucket) String() string {
	return string(b)
}

// IsValid reports whether the value is a known OrderBucket.
func (b OrderBucket) IsValid() bool {
	for _, candidate := range validOrderBuckets {
		if candidate == b {
			return true
		}
	}
	return false
}

// Statuses returns every order status that falls into the bucket.
func (b OrderBucket) Statuses() []OrderStatus {
	out := make([]OrderStatus, 0, len(validOrderStatuses))
	for _, status := range validOrderStatuses {
		if status.Bucket() == b {
			out = append(out, status)
		}
	}
	return out
}

// ParseOrderBucket converts raw input into an OrderBucket.
func ParseOrderBucket(value string) (OrderBucket, error) {
	for _, candidate := range validOrderBuckets {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order bucket %q", value)
}
