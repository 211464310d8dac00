package http

import (
	"encoding/json"

	"tracker/internal/core"
)

type expenseRequest struct {
	Date        string      `json:"date" validate:"required"`
	Category    string      `json:"category" validate:"required,max=100"`
	Description string      `json:"description" validate:"required,max=500"`
	Amount      json.Number `json:"amount" validate:"required"`
	BillImage   string      `json:"billImage"`
}

func (req expenseRequest) toExpense() (core.Expense, error) {
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.Expense{}, &core.ValidationError{Field: "date", Err: err}
	}
	amount, err := core.ParseMoney(req.Amount.String())
	if err != nil {
		return core.Expense{}, &core.ValidationError{Field: "amount", Err: err}
	}
	return core.Expense{
		Date:        date,
		Category:    sanitizeInput(req.Category),
		Description: sanitizeInput(req.Description),
		Amount:      amount,
		BillImage:   req.BillImage,
	}, nil
}

type loanRequest struct {
	Person      string      `json:"person" validate:"required,max=100"`
	Amount      json.Number `json:"amount" validate:"required"`
	Date        string      `json:"date" validate:"required"`
	Type        string      `json:"type" validate:"required,oneof=Given Taken"`
	Status      string      `json:"status" validate:"required,oneof=Active Returned Partial"`
	Description string      `json:"description" validate:"max=500"`
	ReturnDate  string      `json:"returnDate"`
}

func (req loanRequest) toLoan() (core.Loan, error) {
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.Loan{}, &core.ValidationError{Field: "date", Err: err}
	}
	amount, err := core.ParseMoney(req.Amount.String())
	if err != nil {
		return core.Loan{}, &core.ValidationError{Field: "amount", Err: err}
	}
	var returnDate core.Date
	if req.ReturnDate != "" {
		if returnDate, err = core.ParseDate(req.ReturnDate); err != nil {
			return core.Loan{}, &core.ValidationError{Field: "returnDate", Err: err}
		}
	}
	return core.Loan{
		Person:      sanitizeInput(req.Person),
		Amount:      amount,
		Date:        date,
		Type:        core.LoanType(req.Type),
		Status:      core.LoanStatus(req.Status),
		Description: sanitizeInput(req.Description),
		ReturnDate:  returnDate,
	}, nil
}

// loanResponse adds the display class of the status badge.
type loanResponse struct {
	core.Loan
	StatusClass string `json:"statusClass"`
}

func toLoanResponse(l core.Loan) loanResponse {
	return loanResponse{Loan: l, StatusClass: l.Status.Class()}
}

type budgetRequest struct {
	Amount json.Number `json:"amount" validate:"required"`
}

type budgetResponse struct {
	Amount core.Money `json:"amount"`
}

type profileRequest struct {
	Name          string `json:"name" validate:"required,max=100"`
	Phone         string `json:"phone" validate:"required,max=20"`
	Email         string `json:"email" validate:"omitempty,email"`
	SMSEnabled    string `json:"smsEnabled" validate:"required,oneof=yes no"`
	ExportEnabled string `json:"exportEnabled" validate:"required,oneof=yes no"`
	Photo         string `json:"photo"`
}

func (req profileRequest) toProfile() core.Profile {
	return core.Profile{
		Name:          sanitizeInput(req.Name),
		Phone:         sanitizeInput(req.Phone),
		Email:         sanitizeInput(req.Email),
		SMSEnabled:    core.Toggle(req.SMSEnabled),
		ExportEnabled: core.Toggle(req.ExportEnabled),
		Photo:         req.Photo,
	}
}

type exportRequest struct {
	ExpenseIDs []int64 `json:"expenseIds"`
	LoanIDs    []int64 `json:"loanIds"`
	Format     string  `json:"format" validate:"omitempty,oneof=csv xlsx sheets"`
}

type sheetsResponse struct {
	Range string `json:"range"`
}
