package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/habedi/hrgo/hr"
	"github.com/habedi/hrgo/pkg/clierr"
	"github.com/habedi/hrgo/pkg/pool"
	"github.com/habedi/hrgo/pkg/validation"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func leaveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leave",
		Short: "Manage your leave requests",
	}

	cmd.AddCommand(
		leaveListCmd(a),
		leaveSubmitCmd(a),
		leaveCancelCmd(a),
		leaveBalanceCmd(a),
	)

	return cmd
}

func leaveListCmd(a *app) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your leave requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateLeaveStatus(status); err != nil {
				return clierr.New(clierr.Validation, err.Error(), err)
			}
			s, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			requests, err := s.hr.LeaveRequests(cmd.Context(), status)
			if err != nil {
				return err
			}
			if len(requests) == 0 {
				cmd.Println("No leave requests found.")
				return nil
			}

			table := newTable(cmd.OutOrStdout(), "ID", "Type", "Period", "Days", "Status", "Reason")
			for _, r := range requests {
				table.Append([]string{
					strconv.Itoa(r.ID),
					r.LeaveType,
					r.Period(),
					formatDays(r.Days),
					r.Status,
					singleLine(r.Reason),
				})
			}
			table.Render()
			log.Info().Msgf("Listed %d leave requests.", len(requests))
			return nil
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "all", "Filter by status [all, pending, approved, rejected, cancelled]")
	return cmd
}

func leaveSubmitCmd(a *app) *cobra.Command {
	var leaveType, from, to, reason string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a new leave request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := hr.NewLeaveSubmission(leaveType, from, to, reason)
			if err != nil {
				return clierr.New(clierr.Validation, err.Error(), err)
			}
			s, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			req, err := s.hr.SubmitLeave(cmd.Context(), sub)
			if err != nil {
				return err
			}
			cmd.Printf("Leave request %d submitted for %s (%s).\n", req.ID, req.Period(), req.Status)
			return nil
		},
	}

	cmd.Flags().StringVarP(&leaveType, "type", "t", "annual", "Leave type")
	cmd.Flags().StringVarP(&from, "from", "f", "", "First day of leave as DD/MM/YYYY")
	cmd.Flags().StringVar(&to, "to", "", "Last day of leave as DD/MM/YYYY")
	cmd.Flags().StringVarP(&reason, "reason", "r", "", "Reason shown to the approver")
	for _, name := range []string{"from", "to"} {
		if err := cmd.MarkFlagRequired(name); err != nil {
			log.Error().Err(err).Msgf("Failed to mark '%s' flag as required", name)
		}
	}
	return cmd
}

// leaveCancelCmd cancels one or more leave requests concurrently.
func leaveCancelCmd(a *app) *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "cancel [id...]",
		Short: "Cancel leave requests",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseLeaveIDs(args)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("workers") {
				workers = a.cfg.Workers
			}
			if err := validation.ValidateWorkerCount(workers); err != nil {
				return clierr.New(clierr.Validation, err.Error(), err)
			}

			s, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			errs := cancelLeaves(cmd, s.hr, ids, workers)
			if len(errs) > 0 {
				for _, e := range errs {
					cmd.PrintErrln("Error:", toCLIError(e).Message)
				}
				return fmt.Errorf("%d of %d cancellations failed: %w", len(errs), len(ids), errs[0])
			}
			cmd.Printf("Cancelled %d leave request(s).\n", len(ids))
			return nil
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 4, "Number of concurrent requests [1-20]")
	return cmd
}

func cancelLeaves(cmd *cobra.Command, svc *hr.Service, ids []int, workers int) []error {
	bar := progressbar.NewOptions(len(ids),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetDescription("Cancelling leave requests..."),
		progressbar.OptionSetWidth(20),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	defer func() { _ = bar.Finish() }()

	worker := func(ctx context.Context, id int) error {
		if err := svc.CancelLeave(ctx, id); err != nil {
			return fmt.Errorf("leave request %d: %w", id, err)
		}
		return nil
	}
	onDone := func(id int, err error) {
		if err != nil {
			log.Warn().Err(err).Int("id", id).Msg("Failed to cancel leave request")
		}
		_ = bar.Add(1)
	}
	return pool.RunWithHook(cmd.Context(), ids, workers, worker, onDone)
}

func parseLeaveIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		id, err := strconv.Atoi(arg)
		if err == nil {
			err = validation.ValidateLeaveID(id)
		}
		if err != nil {
			return nil, clierr.New(clierr.Validation, fmt.Sprintf("Invalid leave request ID %q. It must be a positive integer.", arg), err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func leaveBalanceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show your leave entitlement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			b, err := s.hr.LeaveBalance(cmd.Context())
			if err != nil {
				return err
			}
			printBalance(cmd, b)
			return nil
		},
	}
}

func printBalance(cmd *cobra.Command, b *hr.LeaveBalance) {
	table := newTable(cmd.OutOrStdout(), "Year", "Entitled", "Used", "Pending", "Remaining")
	table.Append([]string{
		strconv.Itoa(b.Year),
		formatDays(b.Entitled),
		formatDays(b.Used),
		formatDays(b.Pending),
		formatDays(b.Remaining),
	})
	table.Render()
}
