package controllers

import (
	"errors"
	"net/http"
	"net/url"

	"cellar/app/dto"
	"cellar/app/services"
	"cellar/app/session"
	"cellar/app/views"
	"cellar/global"
)

type AuthController struct {
	Users    *services.UserService
	Sessions *session.Manager
	Views    *views.Renderer
	BaseURL  string
}

func NewAuthController(users *services.UserService, sessions *session.Manager, v *views.Renderer, baseURL string) *AuthController {
	return &AuthController{Users: users, Sessions: sessions, Views: v, BaseURL: baseURL}
}

// genericFailure is what the user sees for store or internal errors; detail
// stays in the log.
const genericFailure = "Something went wrong, please try again later."

func loginTarget(r *http.Request) string {
	if ret := r.URL.Query().Get("return"); ret != "" {
		return "/login?return=" + url.QueryEscape(ret)
	}
	return "/login"
}

func (c *AuthController) LoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := c.Sessions.CurrentUser(r); ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	c.Views.Render(w, http.StatusOK, "login", views.Data{
		Title:   "Login",
		Flashes: c.Sessions.PopFlashes(r),
		Return:  r.URL.Query().Get("return"),
	})
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	form := dto.ParseLoginForm(r)
	if errs := form.Validate(); len(errs) > 0 {
		for _, msg := range errs {
			c.Sessions.Flash(w, r, "error", msg)
		}
		http.Redirect(w, r, loginTarget(r), http.StatusFound)
		return
	}

	u, err := c.Users.Authenticate(form.Email, form.Password)
	if err != nil {
		if !errors.Is(err, services.ErrInvalidCredentials) {
			global.Logger.Error().Err(err).Msg("login failed")
		}
		c.Sessions.Flash(w, r, "error", services.ErrInvalidCredentials.Error())
		http.Redirect(w, r, loginTarget(r), http.StatusFound)
		return
	}

	if err := c.Sessions.Login(w, r, u); err != nil {
		global.Logger.Error().Err(err).Msg("session login failed")
		c.Sessions.Flash(w, r, "error", genericFailure)
		http.Redirect(w, r, loginTarget(r), http.StatusFound)
		return
	}
	target := r.URL.Query().Get("return")
	if target == "" || target[0] != '/' {
		target = "/"
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func (c *AuthController) RegisterPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := c.Sessions.CurrentUser(r); ok {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	c.Views.Render(w, http.StatusOK, "register", views.Data{
		Title:   "Register",
		Flashes: c.Sessions.PopFlashes(r),
	})
}

func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	form := dto.ParseRegisterForm(r)
	if errs := form.Validate(); len(errs) > 0 {
		for _, msg := range errs {
			c.Sessions.Flash(w, r, "error", msg)
		}
		http.Redirect(w, r, "/register", http.StatusFound)
		return
	}

	u, err := c.Users.Register(form.Name, form.Email, form.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailTaken):
			c.Sessions.Flash(w, r, "error", services.ErrEmailTaken.Error())
		case errors.Is(err, services.ErrWeakPassword), errors.Is(err, services.ErrInvalidEmail), errors.Is(err, services.ErrMissingFields):
			c.Sessions.Flash(w, r, "error", err.Error())
		default:
			global.Logger.Error().Err(err).Msg("registration failed")
			c.Sessions.Flash(w, r, "error", genericFailure)
		}
		http.Redirect(w, r, "/register", http.StatusFound)
		return
	}

	if err := c.Sessions.Login(w, r, u); err != nil {
		global.Logger.Error().Err(err).Msg("session login failed")
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (c *AuthController) ForgotPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := c.Sessions.CurrentUser(r); ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	c.Views.Render(w, http.StatusOK, "forgot", views.Data{
		Title:   "Forgot Password",
		Flashes: c.Sessions.PopFlashes(r),
	})
}

// Forgot always reports the same outcome whether or not the email is
// registered; a mail failure is the sender's problem, not the user's.
func (c *AuthController) Forgot(w http.ResponseWriter, r *http.Request) {
	form := dto.ParseForgotForm(r)
	if errs := form.Validate(); len(errs) > 0 {
		for _, msg := range errs {
			c.Sessions.Flash(w, r, "error", msg)
		}
		http.Redirect(w, r, "/forgot", http.StatusFound)
		return
	}

	if err := c.Users.RequestPasswordReset(form.Email, c.BaseURL); err != nil {
		if !errors.Is(err, services.ErrInvalidEmail) {
			global.Logger.Error().Err(err).Msg("password reset request failed")
			c.Sessions.Flash(w, r, "error", genericFailure)
			http.Redirect(w, r, "/forgot", http.StatusFound)
			return
		}
	}
	c.Sessions.Flash(w, r, "info", "An email has been sent to the requested email with further instructions.")
	http.Redirect(w, r, "/forgot", http.StatusFound)
}

func (c *AuthController) ResetPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := c.Sessions.CurrentUser(r); ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	tok := r.PathValue("token")
	if _, err := c.Users.UserForResetToken(tok); err != nil {
		c.Sessions.Flash(w, r, "error", services.ErrTokenInvalid.Error())
		http.Redirect(w, r, "/forgot", http.StatusFound)
		return
	}
	c.Views.Render(w, http.StatusOK, "reset", views.Data{
		Title:   "Password Reset",
		Flashes: c.Sessions.PopFlashes(r),
		Token:   tok,
	})
}

func (c *AuthController) Reset(w http.ResponseWriter, r *http.Request) {
	tok := r.PathValue("token")
	form := dto.ParseResetForm(r)
	if errs := form.Validate(); len(errs) > 0 {
		for _, msg := range errs {
			c.Sessions.Flash(w, r, "error", msg)
		}
		http.Redirect(w, r, "/reset/"+url.PathEscape(tok), http.StatusFound)
		return
	}

	u, err := c.Users.ResetPassword(tok, form.Password, form.Confirm)
	if err != nil {
		if errors.Is(err, services.ErrTokenInvalid) {
			c.Sessions.Flash(w, r, "error", services.ErrTokenInvalid.Error())
			http.Redirect(w, r, "/forgot", http.StatusFound)
			return
		}
		global.Logger.Error().Err(err).Msg("password reset failed")
		c.Sessions.Flash(w, r, "error", genericFailure)
		http.Redirect(w, r, "/reset/"+url.PathEscape(tok), http.StatusFound)
		return
	}

	if err := c.Sessions.Login(w, r, u); err != nil {
		global.Logger.Error().Err(err).Msg("session login failed")
	}
	c.Sessions.Flash(w, r, "success", "Your password has been changed successfully.")
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	c.Sessions.Logout(w, r)
	http.Redirect(w, r, "/", http.StatusFound)
}
