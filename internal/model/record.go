package model

// Record is a medical document a patient uploaded.
type Record struct {
	Base        `bson:",inline"`
	PatientID   string `json:"userId" bson:"userId" db:"patient_id"`
	Title       string `json:"title" bson:"title" db:"title"`
	Description string `json:"description,omitempty" bson:"description,omitempty" db:"description"`
	FileName    string `json:"fileName" bson:"fileName" db:"file_name"`
	FilePath    string `json:"filePath" bson:"filePath" db:"file_path"`
	ContentType string `json:"contentType" bson:"contentType" db:"content_type"`
	Size        int64  `json:"size" bson:"size" db:"size"`
}
