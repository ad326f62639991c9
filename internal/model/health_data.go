package model

import "time"

type HealthDataType string

const (
	HealthWeight        HealthDataType = "weight"
	HealthBloodPressure HealthDataType = "blood_pressure"
	HealthHeartRate     HealthDataType = "heart_rate"
	HealthBloodSugar    HealthDataType = "blood_sugar"
	HealthTemperature   HealthDataType = "temperature"
	HealthSleep         HealthDataType = "sleep"
	HealthSteps         HealthDataType = "steps"
)

type HealthData struct {
	Base       `bson:",inline"`
	PatientID  string         `json:"userId" bson:"userId" db:"patient_id"`
	Type       HealthDataType `json:"type" bson:"type" db:"type"`
	Value      string         `json:"value" bson:"value" db:"value"`
	Unit       string         `json:"unit,omitempty" bson:"unit,omitempty" db:"unit"`
	Notes      string         `json:"notes,omitempty" bson:"notes,omitempty" db:"notes"`
	RecordedAt time.Time      `json:"recordedAt" bson:"recordedAt" db:"recorded_at"`
}

type CreateHealthDataRequest struct {
	Type       HealthDataType `json:"type" binding:"required,oneof=weight blood_pressure heart_rate blood_sugar temperature sleep steps"`
	Value      string         `json:"value" binding:"required"`
	Unit       string         `json:"unit"`
	Notes      string         `json:"notes" binding:"max=500"`
	RecordedAt *time.Time     `json:"recordedAt"`
}
