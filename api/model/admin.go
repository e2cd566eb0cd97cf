package model

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type AdminLogin struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (l *AdminLogin) ValidateAdminLogin() error {
	return validation.ValidateStruct(l,
		validation.Field(&l.Username, validation.Required),
		validation.Field(&l.Password, validation.Required),
	)
}

type AdminCreate struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *AdminCreate) ValidateAdminCreate() error {
	a.Username = strings.TrimSpace(a.Username)
	a.Email = strings.TrimSpace(a.Email)
	return validation.ValidateStruct(a,
		validation.Field(&a.Username, validation.Required, validation.Length(3, 50)),
		validation.Field(&a.Email, emailRules()...),
		validation.Field(&a.Password, validation.Required, validation.Length(1, 72)),
	)
}
