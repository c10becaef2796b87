package hr

import (
	"strings"

	"github.com/habedi/hrgo/pkg/dates"
	"github.com/habedi/hrgo/pkg/permission"
)

// Profile is the employee's own record.
type Profile struct {
	ID             int    `json:"id"`
	EmployeeNumber string `json:"employeeNumber"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	Phone          string `json:"phone,omitempty"`
	Address        string `json:"address,omitempty"`
	Department     string `json:"department,omitempty"`
	Position       string `json:"position,omitempty"`
	HireDate       string `json:"hireDate,omitempty"`
	BirthDate      string `json:"birthDate,omitempty"`
}

func (p Profile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// ProfileUpdate carries the fields an employee may change. Nil fields are left as they are.
type ProfileUpdate struct {
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Address   *string `json:"address,omitempty"`
	BirthDate *string `json:"birthDate,omitempty"` // ISO date
}

// Empty reports whether the update changes nothing.
func (u ProfileUpdate) Empty() bool {
	return u.Email == nil && u.Phone == nil && u.Address == nil && u.BirthDate == nil
}

// LeaveRequest is a submitted leave request. Dates are ISO strings as sent by the API.
type LeaveRequest struct {
	ID        int     `json:"id"`
	LeaveType string  `json:"leaveType"`
	StartDate string  `json:"startDate"`
	EndDate   string  `json:"endDate"`
	Days      float64 `json:"days"`
	Status    string  `json:"status"`
	Reason    string  `json:"reason,omitempty"`
	CreatedAt string  `json:"createdAt,omitempty"`
}

// Period renders the request's dates as "DD/MM/YYYY - DD/MM/YYYY".
func (r LeaveRequest) Period() string {
	return displayOrRaw(r.StartDate) + " - " + displayOrRaw(r.EndDate)
}

// LeaveSubmission is the payload of a new leave request.
type LeaveSubmission struct {
	LeaveType string `json:"leaveType"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Reason    string `json:"reason,omitempty"`
}

// LeaveBalance summarizes the employee's annual entitlement.
type LeaveBalance struct {
	Year      int     `json:"year"`
	Entitled  float64 `json:"entitled"`
	Used      float64 `json:"used"`
	Pending   float64 `json:"pending"`
	Remaining float64 `json:"remaining"`
}

// AttendanceRecord is one day of time-clock (PDKS) data.
type AttendanceRecord struct {
	Date          string `json:"date"`
	CheckIn       string `json:"checkIn,omitempty"`
	CheckOut      string `json:"checkOut,omitempty"`
	WorkedMinutes int    `json:"workedMinutes"`
	Status        string `json:"status,omitempty"`
}

// DisplayDate renders Date as DD/MM/YYYY.
func (a AttendanceRecord) DisplayDate() string {
	return displayOrRaw(a.Date)
}

// Overview bundles what the landing screen shows.
type Overview struct {
	Profile     *Profile
	Balance     *LeaveBalance
	Permissions permission.Set
}

// displayOrRaw falls back to the raw value when the API sends something unparseable.
func displayOrRaw(iso string) string {
	s, err := dates.ISOToDisplay(iso)
	if err != nil {
		return iso
	}
	return s
}
