package model

// User is a staff account. Only the admin role exists today.
type User struct {
	Base         `bson:",inline"`
	Name         string `json:"name" bson:"name" db:"name"`
	Email        string `json:"email" bson:"email" db:"email"`
	PasswordHash string `json:"-" bson:"passwordHash" db:"password_hash"`
	Role         string `json:"role" bson:"role" db:"role"`
}
