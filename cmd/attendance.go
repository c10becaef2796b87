package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/habedi/hrgo/hr"
	"github.com/habedi/hrgo/pkg/clierr"
	"github.com/habedi/hrgo/pkg/dates"
	"github.com/spf13/cobra"
)

// attendanceCmd lists time-clock records. The range defaults to the current month.
func attendanceCmd(a *app) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "attendance",
		Short: "Show your time-clock (PDKS) records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := attendanceRange(from, to, time.Now())
			if err != nil {
				return clierr.New(clierr.Validation, err.Error(), err)
			}
			s, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			records, err := s.hr.Attendance(cmd.Context(), start, end)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				cmd.Printf("No attendance records between %s and %s.\n", dates.FormatDisplay(start), dates.FormatDisplay(end))
				return nil
			}

			table := newTable(cmd.OutOrStdout(), "Date", "Check In", "Check Out", "Worked", "Status")
			for _, r := range records {
				table.Append([]string{
					r.DisplayDate(),
					r.CheckIn,
					r.CheckOut,
					formatMinutes(r.WorkedMinutes),
					r.Status,
				})
			}
			table.SetFooter([]string{"", "", "Total", formatMinutes(int(hr.TotalWorked(records).Minutes())), ""})
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVarP(&from, "from", "f", "", "First day as DD/MM/YYYY (default: first day of this month)")
	cmd.Flags().StringVar(&to, "to", "", "Last day as DD/MM/YYYY (default: today)")
	return cmd
}

func attendanceRange(from, to string, now time.Time) (time.Time, time.Time, error) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	var err error
	if from != "" {
		if start, err = dates.ParseDisplay(from); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --from: %w", err)
		}
	}
	if to != "" {
		if end, err = dates.ParseDisplay(to); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --to: %w", err)
		}
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("--from %s is after --to %s", dates.FormatDisplay(start), dates.FormatDisplay(end))
	}
	return start, end, nil
}

func formatMinutes(m int) string {
	return strconv.Itoa(m/60) + "h" + fmt.Sprintf("%02dm", m%60)
}
