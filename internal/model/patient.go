package model

type Patient struct {
	Base         `bson:",inline"`
	Name         string `json:"name" bson:"name" db:"name"`
	Email        string `json:"email" bson:"email" db:"email"`
	PasswordHash string `json:"-" bson:"passwordHash" db:"password_hash"`
	Phone        string `json:"phone,omitempty" bson:"phone,omitempty" db:"phone"`
	Gender       string `json:"gender,omitempty" bson:"gender,omitempty" db:"gender"`
	DOB          string `json:"dob,omitempty" bson:"dob,omitempty" db:"dob"`
	Address      string `json:"address,omitempty" bson:"address,omitempty" db:"address"`
	BloodGroup   string `json:"bloodGroup,omitempty" bson:"bloodGroup,omitempty" db:"blood_group"`
	Image        string `json:"image,omitempty" bson:"image,omitempty" db:"image"`
}

type UpdatePatientRequest struct {
	Name       *string `json:"name" binding:"omitempty,min=1"`
	Phone      *string `json:"phone"`
	Gender     *string `json:"gender" binding:"omitempty,oneof=male female other"`
	DOB        *string `json:"dob" binding:"omitempty,slotdate"`
	Address    *string `json:"address"`
	BloodGroup *string `json:"bloodGroup"`
}
