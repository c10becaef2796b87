package hr

import (
	"context"
	"fmt"
	"strconv"

	"github.com/habedi/hrgo/client"
	"github.com/habedi/hrgo/pkg/dates"
	"github.com/habedi/hrgo/pkg/validation"
	"github.com/rs/zerolog/log"
)

// NewLeaveSubmission builds a submission from DD/MM/YYYY dates as the employee types them.
func NewLeaveSubmission(leaveType, from, to, reason string) (LeaveSubmission, error) {
	if err := validation.ValidateNonEmptyString("leave type", leaveType); err != nil {
		return LeaveSubmission{}, err
	}
	start, err := dates.ParseDisplay(from)
	if err != nil {
		return LeaveSubmission{}, fmt.Errorf("invalid start date: %w", err)
	}
	end, err := dates.ParseDisplay(to)
	if err != nil {
		return LeaveSubmission{}, fmt.Errorf("invalid end date: %w", err)
	}
	if err := validation.ValidateDateRange(start, end); err != nil {
		return LeaveSubmission{}, err
	}
	return LeaveSubmission{
		LeaveType: leaveType,
		StartDate: dates.FormatISODate(start),
		EndDate:   dates.FormatISODate(end),
		Reason:    reason,
	}, nil
}

// LeaveRequests lists the employee's leave requests. An empty status or "all" lists every request.
func (s *Service) LeaveRequests(ctx context.Context, status string) ([]LeaveRequest, error) {
	var filter any
	if status != "" && status != "all" {
		if err := validation.ValidateLeaveStatus(status); err != nil {
			return nil, err
		}
		filter = status
	}
	data, err := client.Get[[]LeaveRequest](ctx, s.client, "/leave-requests", client.Query{"status": filter})
	return list(data, err)
}

// SubmitLeave files a new leave request and returns it as stored by the server.
func (s *Service) SubmitLeave(ctx context.Context, sub LeaveSubmission) (*LeaveRequest, error) {
	data, err := client.Post[LeaveRequest](ctx, s.client, "/leave-requests", sub)
	req, err := single(data, err, "submitted leave request")
	if err != nil {
		return nil, err
	}
	log.Info().Int("id", req.ID).Str("type", req.LeaveType).Msg("Leave request submitted")
	return req, nil
}

// CancelLeave withdraws the leave request with the given id.
func (s *Service) CancelLeave(ctx context.Context, id int) error {
	if err := validation.ValidateLeaveID(id); err != nil {
		return err
	}
	_, err := client.Delete[any](ctx, s.client, "/leave-requests/"+strconv.Itoa(id))
	if err != nil {
		if client.IsNotFound(err) {
			return fmt.Errorf("leave request %d: %w", id, ErrNotFound)
		}
		return err
	}
	log.Info().Int("id", id).Msg("Leave request cancelled")
	return nil
}

// LeaveBalance fetches the current year's entitlement.
func (s *Service) LeaveBalance(ctx context.Context) (*LeaveBalance, error) {
	data, err := client.Get[LeaveBalance](ctx, s.client, "/leave-requests/balance", nil)
	return single(data, err, "leave balance")
}
