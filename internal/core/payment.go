package core

import "time"

// Payment methods.
const (
	MethodCash         = "cash"
	MethodCard         = "card"
	MethodBankTransfer = "bank transfer"
)

// Payment is immutable once recorded.
type Payment struct {
	ID             int64     `json:"id"`
	MemberID       int64     `json:"memberId"`
	SubscriptionID *int64    `json:"subscriptionId"`
	Amount         Money     `json:"amount"`
	PaymentDate    Date      `json:"paymentDate"`
	PaymentMethod  string    `json:"paymentMethod"`
	Notes          *string   `json:"notes"`
	CreatedAt      time.Time `json:"createdAt"`
}

type PaymentInput struct {
	MemberID       int64   `json:"memberId"`
	SubscriptionID *int64  `json:"subscriptionId"`
	Amount         Money   `json:"amount"`
	PaymentDate    *Date   `json:"paymentDate"`
	PaymentMethod  string  `json:"paymentMethod"`
	Notes          *string `json:"notes"`
}

// Payment builds the record to insert; the payment date defaults to today.
func (in PaymentInput) Payment(today Date, now time.Time) Payment {
	p := Payment{
		MemberID:       in.MemberID,
		SubscriptionID: in.SubscriptionID,
		Amount:         in.Amount,
		PaymentDate:    today,
		PaymentMethod:  in.PaymentMethod,
		Notes:          in.Notes,
		CreatedAt:      now.UTC(),
	}
	if in.PaymentDate != nil {
		p.PaymentDate = *in.PaymentDate
	}
	return p
}

func (p Payment) Validate() error {
	var v validator
	v.check(p.MemberID > 0, "memberId", "is required")
	v.check(p.Amount.Validate() == nil, "amount", "must be a positive amount")
	v.check(!p.PaymentDate.IsZero(), "paymentDate", "is required")
	switch p.PaymentMethod {
	case MethodCash, MethodCard, MethodBankTransfer:
	case "":
		v.add("paymentMethod", "is required")
	default:
		v.add("paymentMethod", "must be one of cash, card, bank transfer")
	}
	if p.SubscriptionID != nil {
		v.check(*p.SubscriptionID > 0, "subscriptionId", "must be a valid id")
	}
	return v.err()
}
