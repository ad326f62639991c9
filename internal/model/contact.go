package model

type Contact struct {
	Base    `bson:",inline"`
	Name    string `json:"name" bson:"name" db:"name"`
	Email   string `json:"email" bson:"email" db:"email"`
	Phone   string `json:"phone,omitempty" bson:"phone,omitempty" db:"phone"`
	Subject string `json:"subject,omitempty" bson:"subject,omitempty" db:"subject"`
	Message string `json:"message" bson:"message" db:"message"`
}

type CreateContactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject" binding:"max=200"`
	Message string `json:"message" binding:"required,max=5000"`
}
