package dto

import (
	"net/http"
	"net/mail"
	"strings"
)

type LoginForm struct {
	Email    string
	Password string
}

func ParseLoginForm(r *http.Request) LoginForm {
	return LoginForm{Email: r.PostFormValue("email"), Password: r.PostFormValue("password")}
}

func (f LoginForm) Validate() []string {
	var errs []string
	if strings.TrimSpace(f.Email) == "" {
		errs = append(errs, "Email cannot be blank")
	} else if !validEmail(f.Email) {
		errs = append(errs, "Email is not valid")
	}
	if f.Password == "" {
		errs = append(errs, "Password cannot be blank")
	}
	return errs
}

type RegisterForm struct {
	Name     string
	Email    string
	Password string
}

func ParseRegisterForm(r *http.Request) RegisterForm {
	return RegisterForm{
		Name:     r.PostFormValue("name"),
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
}

func (f RegisterForm) Validate() []string {
	var errs []string
	if strings.TrimSpace(f.Name) == "" {
		errs = append(errs, "Name cannot be blank")
	}
	if strings.TrimSpace(f.Email) == "" {
		errs = append(errs, "Email cannot be blank")
	} else if !validEmail(f.Email) {
		errs = append(errs, "Email is not valid")
	}
	if len(f.Password) < 8 {
		errs = append(errs, "Password must be at least 8 characters long")
	}
	return errs
}

type ForgotForm struct {
	Email string
}

func ParseForgotForm(r *http.Request) ForgotForm {
	return ForgotForm{Email: r.PostFormValue("email")}
}

func (f ForgotForm) Validate() []string {
	var errs []string
	if strings.TrimSpace(f.Email) == "" {
		errs = append(errs, "Email cannot be blank")
	} else if !validEmail(f.Email) {
		errs = append(errs, "Email is not valid")
	}
	return errs
}

type ResetForm struct {
	Password string
	Confirm  string
}

func ParseResetForm(r *http.Request) ResetForm {
	return ResetForm{Password: r.PostFormValue("password"), Confirm: r.PostFormValue("confirm")}
}

func (f ResetForm) Validate() []string {
	var errs []string
	if len(f.Password) < 8 {
		errs = append(errs, "Password must be at least 8 characters long")
	}
	if f.Confirm != f.Password {
		errs = append(errs, "Passwords must match")
	}
	return errs
}

func validEmail(email string) bool {
	_, err := mail.ParseAddress(strings.TrimSpace(email))
	return err == nil
}
