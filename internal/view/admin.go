package view

import (
	"sort"
	"time"
)

// PaymentRecord is one entry in the payments log. Amount is in minor
// currency units; Timestamp is unix seconds.
type PaymentRecord struct {
	Amount    float64 `json:"amount"`
	Timestamp int64   `json:"timestamp"`
}

// RevenuePoint is one day of revenue in major units.
type RevenuePoint struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// RevenueSummary aggregates the payments log for the admin console.
type RevenueSummary struct {
	Total  float64        `json:"total"`
	PerDay []RevenuePoint `json:"perDay"`
}

// DeriveRevenue totals payments and groups them per day. Amounts convert
// from minor to major units here and nowhere else. Entries without a
// timestamp count toward the total but not the daily series; the series
// is ordered chronologically regardless of input order.
func DeriveRevenue(payments []PaymentRecord) RevenueSummary {
	var totalMinor float64
	daily := make(map[string]float64)
	dayStart := make(map[string]int64)

	for _, p := range payments {
		totalMinor += p.Amount
		if p.Timestamp == 0 {
			continue
		}
		date := dayLabel(p.Timestamp)
		if first, seen := dayStart[date]; !seen || p.Timestamp < first {
			dayStart[date] = p.Timestamp
		}
		daily[date] += p.Amount / 100
	}

	perDay := make([]RevenuePoint, 0, len(daily))
	for date, amount := range daily {
		perDay = append(perDay, RevenuePoint{Date: date, Amount: amount})
	}
	sort.Slice(perDay, func(i, j int) bool {
		return dayStart[perDay[i].Date] < dayStart[perDay[j].Date]
	})
	return RevenueSummary{Total: totalMinor / 100, PerDay: perDay}
}

func dayLabel(unixSeconds int64) string {
	return time.Unix(unixSeconds, 0).UTC().Format("Jan 2")
}

// SubscriptionRecord is the slice of a subscription the admin console
// aggregates.
type SubscriptionRecord struct {
	Status string `json:"status"`
}

// SubscriptionCounts splits subscriptions into active and inactive.
type SubscriptionCounts struct {
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

// DeriveSubscriptionCounts counts active subscriptions; anything not
// explicitly active is inactive.
func DeriveSubscriptionCounts(subs []SubscriptionRecord) SubscriptionCounts {
	var c SubscriptionCounts
	for _, s := range subs {
		if s.Status == "active" {
			c.Active++
		} else {
			c.Inactive++
		}
	}
	return c
}

// PickupRequest is one emergency pickup request in admin ordering terms.
type PickupRequest struct {
	ID        string `json:"id"`
	UID       string `json:"uid"`
	Email     string `json:"email"`
	Type      string `json:"type"`
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
}

// SortRequestsNewestFirst orders pickup requests for the admin queue.
func SortRequestsNewestFirst(requests []PickupRequest) []PickupRequest {
	out := make([]PickupRequest, len(requests))
	copy(out, requests)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	return out
}
