package model

import "time"

type Payment struct {
	Base          `bson:",inline"`
	AppointmentID string        `json:"appointmentId" bson:"appointmentId" db:"appointment_id"`
	PatientID     string        `json:"userId" bson:"userId" db:"patient_id"`
	DoctorID      string        `json:"docId" bson:"docId" db:"doctor_id"`
	Amount        float64       `json:"amount" bson:"amount" db:"amount"`
	Currency      string        `json:"currency" bson:"currency" db:"currency"`
	Method        string        `json:"method" bson:"method" db:"method"`
	TransactionID string        `json:"transactionId" bson:"transactionId" db:"transaction_id"`
	Status        PaymentStatus `json:"status" bson:"status" db:"status"`
	PaidAt        *time.Time    `json:"paidAt,omitempty" bson:"paidAt,omitempty" db:"paid_at"`
}

type CreatePaymentRequest struct {
	AppointmentID string `json:"appointmentId" binding:"required"`
	Method        string `json:"method" binding:"required,oneof=card upi cash netbanking"`
	Currency      string `json:"currency" binding:"omitempty,len=3"`
	TransactionID string `json:"transactionId"`
}
