package model

type Medication struct {
	Name         string `json:"name" bson:"name" binding:"required"`
	Dosage       string `json:"dosage" bson:"dosage" binding:"required"`
	Frequency    string `json:"frequency" bson:"frequency"`
	Duration     string `json:"duration" bson:"duration"`
	Instructions string `json:"instructions,omitempty" bson:"instructions,omitempty"`
}

type Prescription struct {
	Base          `bson:",inline"`
	AppointmentID string       `json:"appointmentId" bson:"appointmentId"`
	DoctorID      string       `json:"docId" bson:"docId"`
	PatientID     string       `json:"userId" bson:"userId"`
	DoctorName    string       `json:"doctorName,omitempty" bson:"doctorName,omitempty"`
	PatientName   string       `json:"patientName,omitempty" bson:"patientName,omitempty"`
	Diagnosis     string       `json:"diagnosis" bson:"diagnosis"`
	Medications   []Medication `json:"medications" bson:"medications"`
	Notes         string       `json:"notes,omitempty" bson:"notes,omitempty"`
	FollowUpDate  string       `json:"followUpDate,omitempty" bson:"followUpDate,omitempty"`
}

type CreatePrescriptionRequest struct {
	AppointmentID string       `json:"appointmentId" binding:"required"`
	Diagnosis     string       `json:"diagnosis" binding:"required"`
	Medications   []Medication `json:"medications" binding:"required,min=1,dive"`
	Notes         string       `json:"notes"`
	FollowUpDate  string       `json:"followUpDate" binding:"omitempty,slotdate"`
}

type UpdatePrescriptionRequest struct {
	Diagnosis    *string      `json:"diagnosis" binding:"omitempty,min=1"`
	Medications  []Medication `json:"medications" binding:"omitempty,min=1,dive"`
	Notes        *string      `json:"notes"`
	FollowUpDate *string      `json:"followUpDate" binding:"omitempty,slotdate"`
}
