// Package metrics derives dashboard figures from a product collection.
// Everything here is a pure function of its input snapshot.
package metrics

import (
	"sort"

	"github.com/jrsteele09/foodwaste-zero/inventory"
	"github.com/jrsteele09/foodwaste-zero/risk"
)

type Metrics struct {
	Total         int `json:"total"`
	ConsumedCount int `json:"consumed_count"`
	WastedCount   int `json:"wasted_count"`
	ExpiredCount  int `json:"expired_count"`
	RiskyCount    int `json:"risky_count"` // Urgent + Watch
	SafeCount     int `json:"safe_count"`
}

// Aggregate counts products per risk bucket. SafeCount is always
// Total - ExpiredCount - RiskyCount.
func Aggregate(products []inventory.Product) Metrics {
	m := Metrics{Total: len(products)}
	for _, p := range products {
		switch b := p.Bucket(); {
		case b == risk.Expired:
			m.ExpiredCount++
		case b.IsRisky():
			m.RiskyCount++
		}
	}
	m.SafeCount = m.Total - m.ExpiredCount - m.RiskyCount
	return m
}

// AggregateWithHistory is Aggregate plus the consumed/wasted counts from the
// history log. Unknown actions are ignored.
func AggregateWithHistory(products []inventory.Product, history []inventory.HistoryEntry) Metrics {
	m := Aggregate(products)
	for _, h := range history {
		switch h.Action {
		case inventory.ActionConsumed:
			m.ConsumedCount++
		case inventory.ActionWasted:
			m.WastedCount++
		}
	}
	return m
}

// WasteRate is the percentage of logged products that were wasted rather
// than consumed. Zero when nothing has been logged.
func (m Metrics) WasteRate() float64 {
	logged := m.ConsumedCount + m.WastedCount
	if logged == 0 {
		return 0
	}
	return float64(m.WastedCount) * 100 / float64(logged)
}

// TopPriorities returns the products that are not Safe, most urgent first,
// truncated to limit. Products with equal DaysLeft keep their input order.
func TopPriorities(products []inventory.Product, limit int) []inventory.Product {
	if limit <= 0 {
		return []inventory.Product{}
	}

	priorities := make([]inventory.Product, 0, len(products))
	for _, p := range products {
		if p.Bucket() != risk.Safe {
			priorities = append(priorities, p)
		}
	}
	sort.SliceStable(priorities, func(i, j int) bool {
		return priorities[i].DaysLeft < priorities[j].DaysLeft
	})

	if len(priorities) > limit {
		priorities = priorities[:limit]
	}
	return priorities
}

// Alert is a group of products sharing a non-Safe bucket.
type Alert struct {
	Bucket   risk.Bucket
	Products []inventory.Product
}

// Alerts groups the non-Safe products by bucket, in bucket order. Empty
// buckets are omitted.
func Alerts(products []inventory.Product) []Alert {
	grouped := make(map[risk.Bucket][]inventory.Product)
	for _, p := range products {
		if b := p.Bucket(); b != risk.Safe {
			grouped[b] = append(grouped[b], p)
		}
	}

	alerts := make([]Alert, 0, len(grouped))
	for _, b := range []risk.Bucket{risk.Expired, risk.Urgent, risk.Watch} {
		if ps, ok := grouped[b]; ok {
			alerts = append(alerts, Alert{Bucket: b, Products: ps})
		}
	}
	return alerts
}
