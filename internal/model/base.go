package model

import (
	"time"
)

// Base contains common fields for all documents
type Base struct {
	ID        string    `json:"id" bson:"_id" db:"id"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt" db:"updated_at"`
}

// Roles
const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
	RoleAdmin   = "admin"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID    string
	Role  string
	Email string
}

func (a Actor) IsAdmin() bool   { return a.Role == RoleAdmin }
func (a Actor) IsDoctor() bool  { return a.Role == RoleDoctor }
func (a Actor) IsPatient() bool { return a.Role == RolePatient }

// DateLayout is the format of slot dates.
const DateLayout = "2006-01-02"

// TimeLayout is the format of slot times.
const TimeLayout = "15:04"
