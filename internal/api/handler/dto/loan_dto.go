package dto

import (
	"time"

	"loan-admin/internal/domain/loan"

	"github.com/shopspring/decimal"
)

type CreateLoanRequest struct {
	CustomerID   int64           `json:"customerId" validate:"required,gt=0"`
	LoanAmount   decimal.Decimal `json:"loanAmount" validate:"decimal_gt=0,decimal_places=2"`
	InterestRate decimal.Decimal `json:"interestRate" validate:"decimal_gte=0,decimal_places=4"`
	InterestType string          `json:"interestType" validate:"required,oneof=Flat Reducing"`
	TenureMonths int             `json:"tenureMonths" validate:"required,gte=1,lte=1200"`
	StartDate    string          `json:"startDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

func (r CreateLoanRequest) Params() (loan.CreateLoanParams, error) {
	start, err := ParseDate(r.StartDate)
	if err != nil {
		return loan.CreateLoanParams{}, err
	}
	return loan.CreateLoanParams{
		CustomerID:   r.CustomerID,
		LoanAmount:   r.LoanAmount,
		InterestRate: r.InterestRate,
		InterestType: loan.InterestType(r.InterestType),
		TenureMonths: r.TenureMonths,
		StartDate:    start,
	}, nil
}

// CalculateLoanRequest previews the amortization of loan terms without saving a loan.
type CalculateLoanRequest struct {
	LoanAmount   decimal.Decimal `json:"loanAmount" validate:"decimal_gt=0,decimal_places=2"`
	InterestRate decimal.Decimal `json:"interestRate" validate:"decimal_gte=0,decimal_places=4"`
	InterestType string          `json:"interestType" validate:"required,oneof=Flat Reducing"`
	TenureMonths int             `json:"tenureMonths" validate:"required,gte=1,lte=1200"`
}

type AmortizationResponse struct {
	EMIAmount          string `json:"emiAmount"`
	TotalPayableAmount string `json:"totalPayableAmount"`
	TotalInterest      string `json:"totalInterest"`
}

func NewAmortizationResponse(a loan.Amortization) AmortizationResponse {
	return AmortizationResponse{
		EMIAmount:          money(a.EMI),
		TotalPayableAmount: money(a.TotalPayable),
		TotalInterest:      money(a.TotalInterest),
	}
}

type UpdateLoanStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Active Overdue Closed"`
}

type LoanCustomerResponse struct {
	ID           string `json:"id"`
	FullName     string `json:"fullName"`
	MobileNumber string `json:"mobileNumber"`
	Address      string `json:"address,omitempty"`
}

type LoanResponse struct {
	ID                 string               `json:"id"`
	Customer           LoanCustomerResponse `json:"customer"`
	LoanAmount         string               `json:"loanAmount"`
	InterestRate       string               `json:"interestRate"`
	InterestType       string               `json:"interestType"`
	StartDate          string               `json:"startDate"`
	TenureMonths       int                  `json:"tenureMonths"`
	EMIAmount          string               `json:"emiAmount"`
	TotalPayableAmount string               `json:"totalPayableAmount"`
	OutstandingBalance string               `json:"outstandingBalance"`
	Status             string               `json:"status"`
	CreatedAt          time.Time            `json:"createdAt"`
	UpdatedAt          time.Time            `json:"updatedAt"`
}

func NewLoanResponse(l *loan.Loan) LoanResponse {
	return LoanResponse{
		ID: formatID(l.ID),
		Customer: LoanCustomerResponse{
			ID:           formatID(l.CustomerID),
			FullName:     l.CustomerName,
			MobileNumber: l.CustomerMobile,
			Address:      l.CustomerAddress,
		},
		LoanAmount:         money(l.LoanAmount),
		InterestRate:       l.InterestRate.String(),
		InterestType:       string(l.InterestType),
		StartDate:          formatDate(l.StartDate),
		TenureMonths:       l.TenureMonths,
		EMIAmount:          money(l.EMIAmount),
		TotalPayableAmount: money(l.TotalPayableAmount),
		OutstandingBalance: money(l.OutstandingBalance),
		Status:             string(l.Status),
		CreatedAt:          l.CreatedAt,
		UpdatedAt:          l.UpdatedAt,
	}
}

func NewLoanListResponse(loans []*loan.Loan) []LoanResponse {
	resp := make([]LoanResponse, 0, len(loans))
	for _, l := range loans {
		resp = append(resp, NewLoanResponse(l))
	}
	return resp
}

type InstallmentResponse struct {
	Number  int    `json:"number"`
	DueDate string `json:"dueDate"`
	Amount  string `json:"amount"`
}

func NewScheduleResponse(installments []loan.Installment) []InstallmentResponse {
	resp := make([]InstallmentResponse, 0, len(installments))
	for _, in := range installments {
		resp = append(resp, InstallmentResponse{
			Number:  in.Number,
			DueDate: formatDate(in.DueDate),
			Amount:  money(in.Amount),
		})
	}
	return resp
}
