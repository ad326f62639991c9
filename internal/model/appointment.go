package model

import (
	"time"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

func (s AppointmentStatus) Terminal() bool {
	return s == AppointmentStatusCompleted || s == AppointmentStatusCancelled
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

type Appointment struct {
	Base          `bson:",inline"`
	DoctorID      string            `json:"docId" bson:"docId"`
	PatientID     string            `json:"userId" bson:"userId"`
	SlotDate      string            `json:"slotDate" bson:"slotDate"`
	SlotTime      string            `json:"slotTime" bson:"slotTime"`
	Amount        float64           `json:"amount" bson:"amount"`
	Status        AppointmentStatus `json:"status" bson:"status"`
	PaymentStatus PaymentStatus     `json:"paymentStatus" bson:"paymentStatus"`

	DoctorName   string `json:"doctorName,omitempty" bson:"doctorName,omitempty"`
	PatientName  string `json:"patientName,omitempty" bson:"patientName,omitempty"`
	PatientEmail string `json:"patientEmail,omitempty" bson:"patientEmail,omitempty"`

	ConfirmedAt   *time.Time `json:"confirmedAt,omitempty" bson:"confirmedAt,omitempty"`
	CancelledBy   string     `json:"cancelledBy,omitempty" bson:"cancelledBy,omitempty"`
	CancelledByID string     `json:"cancelledById,omitempty" bson:"cancelledById,omitempty"`
	Reason        string     `json:"reason,omitempty" bson:"reason,omitempty"`
	CancelledAt   *time.Time `json:"cancelledAt,omitempty" bson:"cancelledAt,omitempty"`
	RefundDate    *time.Time `json:"refundDate,omitempty" bson:"refundDate,omitempty"`
	RefundAmount  float64    `json:"refundAmount,omitempty" bson:"refundAmount,omitempty"`
	IsCompleted   bool       `json:"isCompleted" bson:"isCompleted"`
	CompletedAt   *time.Time `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
	CompletedBy   string     `json:"completedBy,omitempty" bson:"completedBy,omitempty"`

	CallState `bson:",inline"`
}

// CallState carries video-call signaling blobs relayed between the two parties.
type CallState struct {
	Offer         string   `json:"webrtcOffer,omitempty" bson:"webrtcOffer,omitempty"`
	Answer        string   `json:"webrtcAnswer,omitempty" bson:"webrtcAnswer,omitempty"`
	ICECandidates []string `json:"iceCandidates,omitempty" bson:"iceCandidates,omitempty"`
	Ended         bool     `json:"callEnded" bson:"callEnded"`
	EndedBy       string   `json:"endedBy,omitempty" bson:"endedBy,omitempty"`
}

// SlotStart parses slotDate and slotTime as a wall-clock instant in loc.
func (a *Appointment) SlotStart(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+TimeLayout, a.SlotDate+" "+a.SlotTime, loc)
}

// IsParticipant reports whether the id is the appointment's doctor or patient.
func (a *Appointment) IsParticipant(id string) bool {
	return id != "" && (id == a.DoctorID || id == a.PatientID)
}

type BookAppointmentRequest struct {
	DoctorID string `json:"docId" binding:"required"`
	SlotDate string `json:"slotDate" binding:"required,slotdate"`
	SlotTime string `json:"slotTime" binding:"required"`
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

type SignalRequest struct {
	Payload string `json:"payload" binding:"required"`
}

type AppointmentFilter struct {
	DoctorID  string
	PatientID string
	Status    AppointmentStatus
}

// AvailabilityStatus is the per-doctor, per-date availability answer.
type AvailabilityStatus struct {
	DoctorID       string   `json:"doctorId"`
	Date           string   `json:"date"`
	AvailableSlots []string `json:"availableSlots"`
	BookedSlots    []string `json:"bookedSlots"`
	TotalSlots     int      `json:"totalSlots"`
	BookedCount    int      `json:"bookedCount"`
	IsFullyBooked  bool     `json:"isFullyBooked"`
	Available      bool     `json:"available"`
	Reason         string   `json:"reason,omitempty"`
}
