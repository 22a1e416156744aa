package controllers

import (
	"net/http"

	"cellar/app/middleware"
	"cellar/app/session"
	"cellar/app/views"
)

type PagesController struct {
	Sessions *session.Manager
	Views    *views.Renderer
}

func NewPagesController(sessions *session.Manager, v *views.Renderer) *PagesController {
	return &PagesController{Sessions: sessions, Views: v}
}

// Home also serves as the catch-all, so anything but "/" is a 404 here.
func (c *PagesController) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		c.Views.Render(w, http.StatusNotFound, "error", views.Data{Title: "Not Found"})
		return
	}
	u, _ := c.Sessions.CurrentUser(r)
	c.Views.Render(w, http.StatusOK, "home", views.Data{
		User:    u,
		Flashes: c.Sessions.PopFlashes(r),
	})
}

func (c *PagesController) Dashboard(w http.ResponseWriter, r *http.Request) {
	c.Views.Render(w, http.StatusOK, "dashboard", views.Data{
		Title:   "Dashboard",
		User:    middleware.GetUser(r.Context()),
		Flashes: c.Sessions.PopFlashes(r),
	})
}
