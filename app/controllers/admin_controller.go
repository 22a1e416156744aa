package controllers

import (
	"net/http"

	"cellar/app/middleware"
	"cellar/app/session"
	"cellar/app/views"
)

type AdminController struct {
	Sessions *session.Manager
	Views    *views.Renderer
}

func NewAdminController(sessions *session.Manager, v *views.Renderer) *AdminController {
	return &AdminController{Sessions: sessions, Views: v}
}

func (c *AdminController) Index(w http.ResponseWriter, r *http.Request) {
	c.Views.Render(w, http.StatusOK, "admin", views.Data{
		Title:   "Admin",
		User:    middleware.GetUser(r.Context()),
		Flashes: c.Sessions.PopFlashes(r),
	})
}
