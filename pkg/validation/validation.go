package validation

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	MinWorkers = 1
	MaxWorkers = 20
)

// LeaveStatuses are the status filters accepted by the leave listing.
var LeaveStatuses = []string{"all", "pending", "approved", "rejected", "cancelled"}

func ValidateWorkerCount(workers int) error {
	if workers < MinWorkers || workers > MaxWorkers {
		return fmt.Errorf("worker count must be between %d and %d, got %d", MinWorkers, MaxWorkers, workers)
	}
	return nil
}

func ValidateLeaveID(id int) error {
	if id <= 0 {
		return fmt.Errorf("leave request ID must be a positive integer, got %d", id)
	}
	return nil
}

func ValidateNonEmptyString(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}
	return nil
}

// ValidateDateRange requires both ends to be set and from not to be after to.
func ValidateDateRange(from, to time.Time) error {
	if from.IsZero() || to.IsZero() {
		return fmt.Errorf("both start and end dates are required")
	}
	if from.After(to) {
		return fmt.Errorf("start date %s is after end date %s", from.Format("02/01/2006"), to.Format("02/01/2006"))
	}
	return nil
}

// ValidateBaseURL requires an absolute http or https URL.
func ValidateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid base URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid base URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid base URL %q: missing host", raw)
	}
	return nil
}

func ValidateRefreshMethod(method string) error {
	switch strings.ToUpper(method) {
	case http.MethodGet, http.MethodPost:
		return nil
	}
	return fmt.Errorf("invalid refresh method: %s (must be GET or POST)", method)
}

func ValidateLeaveStatus(status string) error {
	for _, s := range LeaveStatuses {
		if s == status {
			return nil
		}
	}
	return fmt.Errorf("invalid leave status: %s (must be one of: %s)", status, strings.Join(LeaveStatuses, ", "))
}
