package hr

import (
	"context"
	"time"

	"github.com/habedi/hrgo/client"
	"github.com/habedi/hrgo/pkg/dates"
	"github.com/habedi/hrgo/pkg/validation"
)

// Attendance lists time-clock records between from and to, inclusive.
func (s *Service) Attendance(ctx context.Context, from, to time.Time) ([]AttendanceRecord, error) {
	if err := validation.ValidateDateRange(from, to); err != nil {
		return nil, err
	}
	q := client.Query{
		"from": dates.FormatISODate(from),
		"to":   dates.FormatISODate(to),
	}
	data, err := client.Get[[]AttendanceRecord](ctx, s.client, "/attendance", q)
	return list(data, err)
}

// TotalWorked sums the worked time of records.
func TotalWorked(records []AttendanceRecord) time.Duration {
	var total time.Duration
	for _, r := range records {
		total += time.Duration(r.WorkedMinutes) * time.Minute
	}
	return total
}
