package model

import "time"

const (
	PaymentPending  = "PENDING"
	PaymentSuccess  = "SUCCESS"
	PaymentFailed   = "FAILED"
	PaymentRefunded = "REFUNDED"
)

var PaymentMethods = []string{"CASH", "CARD", "UPI", "WALLET"}

type PaymentRequest struct {
	BookingId     int64   `json:"bookingId"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"paymentMethod"`
}

type Payment struct {
	Id             int64     `json:"id"`
	BookingId      int64     `json:"bookingId"`
	Amount         float64   `json:"amount"`
	PaymentMethod  string    `json:"paymentMethod"`
	PaymentStatus  string    `json:"paymentStatus"`
	TransactionId  string    `json:"transactionId"`
	PaymentGateway string    `json:"paymentGateway"`
	CreatedAt      time.Time `json:"createdAt"`
}
