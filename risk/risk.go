// Package risk buckets a product's remaining shelf life into an urgency level.
package risk

// Bucket is an ordered urgency level: Expired < Urgent < Watch < Safe.
// Buckets are always derived from days left and never stored.
type Bucket int

const (
	Expired Bucket = iota
	Urgent
	Watch
	Safe
)

const (
	urgentMaxDays = 1
	watchMaxDays  = 3
)

// Classify maps a remaining-days value to its bucket. It is total over int:
// negative values are Expired, 0..1 Urgent, 2..3 Watch and anything above Safe.
func Classify(daysLeft int) Bucket {
	switch {
	case daysLeft < 0:
		return Expired
	case daysLeft <= urgentMaxDays:
		return Urgent
	case daysLeft <= watchMaxDays:
		return Watch
	default:
		return Safe
	}
}

// IsRisky reports whether the bucket counts towards the "at risk" total.
func (b Bucket) IsRisky() bool {
	return b == Urgent || b == Watch
}

func (b Bucket) String() string {
	switch b {
	case Expired:
		return "expired"
	case Urgent:
		return "urgent"
	case Watch:
		return "watch"
	case Safe:
		return "safe"
	default:
		return "unknown"
	}
}

// Label is the badge text shown next to a product.
func (b Bucket) Label() string {
	switch b {
	case Expired:
		return "Expired"
	case Urgent:
		return "Urgent"
	case Watch:
		return "Keep an eye on"
	case Safe:
		return "OK"
	default:
		return "?"
	}
}
