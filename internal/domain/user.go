package domain

import "time"

// User represents a registered account.
type User struct {
	ID               string    `json:"_id" bson:"_id"`
	Name             string    `json:"name" bson:"name"`
	Email            string    `json:"email" bson:"email"`
	Role             string    `json:"role" bson:"role"`
	PasswordHash     string    `json:"-" bson:"password"`
	Contact          string    `json:"contact,omitempty" bson:"contact,omitempty"`
	Bio              string    `json:"bio,omitempty" bson:"bio,omitempty"`
	Mail             string    `json:"mail,omitempty" bson:"mail,omitempty"`
	Qualification    string    `json:"qualification,omitempty" bson:"qualification,omitempty"`
	Location         string    `json:"location,omitempty" bson:"location,omitempty"`
	ProfileImage     string    `json:"profileImage,omitempty" bson:"profileImage,omitempty"`
	RegistrationDate time.Time `json:"registrationDate" bson:"registrationDate"`
	CreatedAt        time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt" bson:"updatedAt"`
}

// RoleAdmin may update or delete any account.
const RoleAdmin = "admin"

// UserUpdate carries the fields to change on a user. Nil fields are left untouched.
type UserUpdate struct {
	Name          *string
	Email         *string
	Role          *string
	PasswordHash  *string
	Contact       *string
	Bio           *string
	Mail          *string
	Qualification *string
	Location      *string
	ProfileImage  *string
}

// Empty reports whether the update changes nothing.
func (u UserUpdate) Empty() bool {
	return u.Name == nil && u.Email == nil && u.Role == nil && u.PasswordHash == nil &&
		u.Contact == nil && u.Bio == nil && u.Mail == nil && u.Qualification == nil &&
		u.Location == nil && u.ProfileImage == nil
}

