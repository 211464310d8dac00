package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

const (
	LoanGiven LoanType = "Given"
	LoanTaken LoanType = "Taken"
)

const (
	StatusActive   LoanStatus = "Active"
	StatusReturned LoanStatus = "Returned"
	StatusPartial  LoanStatus = "Partial"
)

const (
	ToggleYes Toggle = "yes"
	ToggleNo  Toggle = "no"
)

// DefaultBudget is the monthly budget used until the user sets one.
var DefaultBudget = Money{Cents: 15000_00}

type (
	// LoanType tells whether money was lent (Given) or borrowed (Taken).
	LoanType string

	// LoanStatus is an open set: values other than the known three are
	// kept as stored and classified with the default display class.
	LoanStatus string

	// Toggle is the yes/no switch used by profile preferences.
	Toggle string

	Date struct {
		time.Time
	}

	Expense struct {
		ID          int64  `json:"id"`
		Date        Date   `json:"date"`
		Category    string `json:"category"`
		Description string `json:"description"`
		Amount      Money  `json:"amount"`
		BillImage   string `json:"billImage,omitempty"`
	}

	Loan struct {
		ID          int64      `json:"id"`
		Person      string     `json:"person"`
		Amount      Money      `json:"amount"`
		Date        Date       `json:"date"`
		Type        LoanType   `json:"type"`
		Status      LoanStatus `json:"status"`
		Description string     `json:"description"`
		ReturnDate  Date       `json:"returnDate"`
	}

	Profile struct {
		Name          string `json:"name"`
		Phone         string `json:"phone"`
		Email         string `json:"email"`
		SMSEnabled    Toggle `json:"smsEnabled"`
		ExportEnabled Toggle `json:"exportEnabled"`
		Photo         string `json:"photo,omitempty"`
	}
)

var (
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrAmountOutOfRange  = fmt.Errorf("%w: out of range", ErrInvalidAmount)
	ErrEmptyCategory     = errors.New("empty category")
	ErrEmptyDescription  = errors.New("empty description")
	ErrEmptyPerson       = errors.New("empty person")
	ErrInvalidLoanType   = errors.New("invalid loan type")
	ErrInvalidLoanStatus = errors.New("invalid loan status")
	ErrEmptyName         = errors.New("empty name")
	ErrEmptyPhone        = errors.New("empty phone")
	ErrInvalidToggle     = errors.New("invalid toggle, must be yes or no")
	ErrNegativeBudget    = errors.New("budget cannot be negative")
)

// ValidationError names the field that failed an entry-point check.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO calendar date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// IsEmpty reports whether an optional date was left unset.
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// InMonth reports whether the date falls in the given calendar month.
func (d Date) InMonth(year, month int) bool {
	return !d.IsZero() && d.Year() == year && d.Month() == month
}

// YearMonth returns the "YYYY-MM" key used by the monthly trend.
func (d Date) YearMonth() string {
	return d.Format("2006-01")
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// MarshalJSON renders the date as "YYYY-MM-DD", or "" when unset.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if strings.TrimSpace(s) == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return fmt.Errorf("parse date %q: %w", s, err)
	}
	*d = parsed
	return nil
}

func (t LoanType) Valid() bool {
	return t == LoanGiven || t == LoanTaken
}

// Known reports whether the status is one of Active, Returned or Partial.
func (s LoanStatus) Known() bool {
	switch s {
	case StatusActive, StatusReturned, StatusPartial:
		return true
	}
	return false
}

// Class returns the display class for the status badge.
func (s LoanStatus) Class() string {
	switch s {
	case StatusActive:
		return "warning"
	case StatusReturned:
		return "success"
	case StatusPartial:
		return "info"
	default:
		return "secondary"
	}
}

func (t Toggle) Valid() bool {
	return t == ToggleYes || t == ToggleNo
}

func (t Toggle) Enabled() bool {
	return t == ToggleYes
}

// DefaultProfile is the empty profile with both preferences switched on.
func DefaultProfile() Profile {
	return Profile{SMSEnabled: ToggleYes, ExportEnabled: ToggleYes}
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return invalid("date", err)
	}
	if strings.TrimSpace(e.Category) == "" {
		return invalid("category", ErrEmptyCategory)
	}
	if strings.TrimSpace(e.Description) == "" {
		return invalid("description", ErrEmptyDescription)
	}
	if err := e.Amount.Validate(); err != nil {
		return invalid("amount", err)
	}
	return nil
}

func (l Loan) Validate() error {
	if strings.TrimSpace(l.Person) == "" {
		return invalid("person", ErrEmptyPerson)
	}
	if err := l.Amount.Validate(); err != nil {
		return invalid("amount", err)
	}
	if err := l.Date.Validate(); err != nil {
		return invalid("date", err)
	}
	if !l.Type.Valid() {
		return invalid("type", ErrInvalidLoanType)
	}
	if !l.Status.Known() {
		return invalid("status", ErrInvalidLoanStatus)
	}
	return nil
}

func (p Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return invalid("name", ErrEmptyName)
	}
	if strings.TrimSpace(p.Phone) == "" {
		return invalid("phone", ErrEmptyPhone)
	}
	if !p.SMSEnabled.Valid() {
		return invalid("smsEnabled", ErrInvalidToggle)
	}
	if !p.ExportEnabled.Valid() {
		return invalid("exportEnabled", ErrInvalidToggle)
	}
	return nil
}

// ValidateBudget accepts zero but rejects negative budgets.
func ValidateBudget(m Money) error {
	if m.Cents < 0 {
		return invalid("budget", ErrNegativeBudget)
	}
	return nil
}
