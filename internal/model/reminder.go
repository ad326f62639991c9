package model

type Reminder struct {
	Base         `bson:",inline"`
	PatientID    string `json:"userId" bson:"userId" db:"patient_id"`
	MedicineName string `json:"medicineName" bson:"medicineName" db:"medicine_name"`
	Dosage       string `json:"dosage" bson:"dosage" db:"dosage"`
	Time         string `json:"time" bson:"time" db:"remind_time"`
	Notes        string `json:"notes,omitempty" bson:"notes,omitempty" db:"notes"`
}

type CreateReminderRequest struct {
	MedicineName string `json:"medicineName" binding:"required"`
	Dosage       string `json:"dosage" binding:"required"`
	Time         string `json:"time" binding:"required,slottime"`
	Notes        string `json:"notes" binding:"max=500"`
}
