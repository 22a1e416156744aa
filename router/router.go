package router

import (
	"net/http"

	"cellar/app/controllers"
	"cellar/app/middleware"
)

// New builds the route table. Method-qualified patterns keep GET renders and
// POST submissions on separate handlers.
func New(pages *controllers.PagesController, auth *controllers.AuthController, admin *controllers.AdminController, mw *middleware.Auth, static http.FileSystem) http.Handler {
	mux := http.NewServeMux()

	// public
	mux.HandleFunc("GET /login", auth.LoginPage)
	mux.HandleFunc("POST /login", auth.Login)
	mux.HandleFunc("GET /register", auth.RegisterPage)
	mux.HandleFunc("POST /register", auth.Register)
	mux.HandleFunc("GET /logout", auth.Logout)
	mux.HandleFunc("GET /forgot", auth.ForgotPage)
	mux.HandleFunc("POST /forgot", auth.Forgot)
	mux.HandleFunc("GET /reset/{token}", auth.ResetPage)
	mux.HandleFunc("POST /reset/{token}", auth.Reset)

	// gated
	mux.Handle("GET /dashboard", mw.RequireAuth(http.HandlerFunc(pages.Dashboard)))
	mux.Handle("GET /admin", mw.RequireAdmin(http.HandlerFunc(admin.Index)))

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(static)))
	mux.HandleFunc("/", pages.Home)

	return mux
}
