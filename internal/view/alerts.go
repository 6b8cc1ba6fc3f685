package view

import (
	"sort"
	"strings"

	"github.com/greenbops/greenbops/internal/bin"
)

// Acknowledged filter values.
const (
	AckNew          = "new"
	AckAcknowledged = "acknowledged"
)

// AlertQuery describes one alert-list view. The result is always sorted
// newest first.
type AlertQuery struct {
	Search       string `json:"search"`
	Type         string `json:"type"`
	Acknowledged string `json:"acknowledged"`
}

// Apply filters and sorts a copy of alerts.
func (q AlertQuery) Apply(alerts []bin.Alert) []bin.Alert {
	list := make([]bin.Alert, 0, len(alerts))

	search := strings.ToLower(q.Search)
	for _, a := range alerts {
		if search != "" &&
			!strings.Contains(strings.ToLower(a.DeviceID), search) &&
			!strings.Contains(strings.ToLower(a.Message), search) {
			continue
		}
		if q.Type != "" && q.Type != FilterAll && a.Type != q.Type {
			continue
		}
		if q.Acknowledged != "" && q.Acknowledged != FilterAll {
			if (q.Acknowledged == AckNew) == a.Acknowledged {
				continue
			}
		}
		list = append(list, a)
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].RaisedAt().After(list[j].RaisedAt())
	})
	return list
}
