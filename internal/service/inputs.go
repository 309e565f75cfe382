package service

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// ErrPasswordMismatch is the validation failure for differing confirmation.
var ErrPasswordMismatch = errors.New("passwords do not match")

const maxTextLength = 1000

// SignupInput is the payload of an account registration.
type SignupInput struct {
	Name            string `json:"name" form:"name"`
	Email           string `json:"email" form:"email"`
	Role            string `json:"role" form:"role"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword"`
}

// Validate rejects a mismatched confirmation before looking at any other field.
func (r SignupInput) Validate() error {
	if r.Password != r.ConfirmPassword {
		return invalid(ErrPasswordMismatch)
	}
	return invalid(validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&r.Role, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.Password, validation.Required, validation.Length(1, 72)),
	))
}

// LoginInput is the payload of a credential check.
type LoginInput struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (r LoginInput) Validate() error {
	return invalid(validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	))
}

// ProfileInput holds the fields a user may change on their own profile.
// Nil fields are left untouched.
type ProfileInput struct {
	Contact       *string `json:"contact" form:"contact"`
	Bio           *string `json:"bio" form:"bio"`
	Mail          *string `json:"mail" form:"mail"`
	Qualification *string `json:"qualification" form:"qualification"`
	Location      *string `json:"location" form:"location"`
}

func (r ProfileInput) Validate() error {
	return invalid(validation.ValidateStruct(&r,
		validation.Field(&r.Contact, validation.Length(0, 50)),
		validation.Field(&r.Bio, validation.Length(0, maxTextLength)),
		validation.Field(&r.Mail, is.Email),
		validation.Field(&r.Qualification, validation.Length(0, maxTextLength)),
		validation.Field(&r.Location, validation.Length(0, 200)),
	))
}

// AdminUpdateInput changes any field of an account, gated by the account's
// current password.
type AdminUpdateInput struct {
	CurrentPassword string  `json:"currentPassword"`
	Name            *string `json:"name"`
	Email           *string `json:"email"`
	Role            *string `json:"role"`
	Password        *string `json:"password"`
	Contact         *string `json:"contact"`
	Bio             *string `json:"bio"`
	Mail            *string `json:"mail"`
	Qualification   *string `json:"qualification"`
	Location        *string `json:"location"`
}

func (r AdminUpdateInput) Validate() error {
	return invalid(validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.Name, validation.NilOrNotEmpty, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.NilOrNotEmpty, validation.Length(3, 254), is.Email),
		validation.Field(&r.Role, validation.NilOrNotEmpty, validation.Length(1, 50)),
		validation.Field(&r.Password, validation.NilOrNotEmpty, validation.Length(1, 72)),
		validation.Field(&r.Contact, validation.Length(0, 50)),
		validation.Field(&r.Bio, validation.Length(0, maxTextLength)),
		validation.Field(&r.Mail, is.Email),
		validation.Field(&r.Qualification, validation.Length(0, maxTextLength)),
		validation.Field(&r.Location, validation.Length(0, 200)),
	))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
