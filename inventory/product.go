package inventory

import (
	"time"

	"github.com/jrsteele09/foodwaste-zero/internal/utils"
	"github.com/jrsteele09/foodwaste-zero/risk"
)

// Product is a household item as returned by GET /products/.
type Product struct {
	ID       utils.ID `json:"id"`
	Name     string   `json:"name"`
	Category *string  `json:"category,omitempty"` // nil when uncategorised
	Quantity int      `json:"quantity"`
	DaysLeft int      `json:"days_left"` // negative once expired
}

// Bucket classifies the product from its days left.
func (p Product) Bucket() risk.Bucket {
	return risk.Classify(p.DaysLeft)
}

func (p Product) CategoryName() string {
	return utils.ValueOr(p.Category, "Uncategorised")
}

type Action string

const (
	ActionConsumed Action = "consumed"
	ActionWasted   Action = "wasted"
)

// HistoryEntry records a product leaving the inventory (GET /history).
type HistoryEntry struct {
	ID          utils.ID `json:"id"`
	Action      Action   `json:"action"`
	ProductName *string  `json:"product_name,omitempty"` // nil once the product was deleted
	Amount      int      `json:"amount"`
	CreatedAt   string   `json:"created_at"`
}

// The backend emits naive ISO timestamps, sometimes with fractional seconds.
var historyTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// When parses CreatedAt. Naive timestamps are taken as UTC.
func (h HistoryEntry) When() (time.Time, bool) {
	for _, layout := range historyTimeLayouts {
		if t, err := time.Parse(layout, h.CreatedAt); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
