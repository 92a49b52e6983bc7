package dto

import (
	"time"

	"loan-admin/internal/domain/payment"

	"github.com/shopspring/decimal"
)

type RecordPaymentRequest struct {
	LoanID          int64           `json:"loanId" validate:"required,gt=0"`
	AmountPaid      decimal.Decimal `json:"amountPaid" validate:"decimal_gt=0,decimal_places=2"`
	PaymentMethod   string          `json:"paymentMethod" validate:"required,oneof=Cash Bank UPI"`
	PaymentDate     string          `json:"paymentDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	InterestApplied decimal.Decimal `json:"interestApplied" validate:"decimal_gte=0,decimal_places=2"`
	LateFee         decimal.Decimal `json:"lateFee" validate:"decimal_gte=0,decimal_places=2"`
}

func (r RecordPaymentRequest) Params() (payment.RecordPaymentParams, error) {
	date, err := ParseDate(r.PaymentDate)
	if err != nil {
		return payment.RecordPaymentParams{}, err
	}
	return payment.RecordPaymentParams{
		LoanID:          r.LoanID,
		AmountPaid:      r.AmountPaid,
		PaymentMethod:   payment.Method(r.PaymentMethod),
		PaymentDate:     date,
		InterestApplied: r.InterestApplied,
		LateFee:         r.LateFee,
	}, nil
}

type PaymentLoanResponse struct {
	ID           string `json:"id"`
	CustomerID   string `json:"customerId,omitempty"`
	CustomerName string `json:"customerName,omitempty"`
	LoanAmount   string `json:"loanAmount,omitempty"`
	Status       string `json:"status,omitempty"`
}

type PaymentResponse struct {
	ID               string              `json:"id"`
	Loan             PaymentLoanResponse `json:"loan"`
	PaymentDate      string              `json:"paymentDate"`
	AmountPaid       string              `json:"amountPaid"`
	PaymentMethod    string              `json:"paymentMethod"`
	RemainingBalance string              `json:"remainingBalance"`
	InterestApplied  string              `json:"interestApplied"`
	LateFee          string              `json:"lateFee"`
	RecordedBy       string              `json:"recordedBy"`
	CreatedAt        time.Time           `json:"createdAt"`
}

func NewPaymentResponse(p *payment.Payment) PaymentResponse {
	resp := PaymentResponse{
		ID: formatID(p.ID),
		Loan: PaymentLoanResponse{
			ID:           formatID(p.LoanID),
			CustomerName: p.CustomerName,
			Status:       string(p.LoanStatus),
		},
		PaymentDate:      formatDate(p.PaymentDate),
		AmountPaid:       money(p.AmountPaid),
		PaymentMethod:    string(p.PaymentMethod),
		RemainingBalance: money(p.RemainingBalance),
		InterestApplied:  money(p.InterestApplied),
		LateFee:          money(p.LateFee),
		RecordedBy:       formatID(p.RecordedBy),
		CreatedAt:        p.CreatedAt,
	}
	if p.CustomerID != 0 {
		resp.Loan.CustomerID = formatID(p.CustomerID)
		resp.Loan.LoanAmount = money(p.LoanAmount)
	}
	return resp
}

func NewPaymentListResponse(payments []*payment.Payment) []PaymentResponse {
	resp := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		resp = append(resp, NewPaymentResponse(p))
	}
	return resp
}
