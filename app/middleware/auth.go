package middleware

import (
	"context"
	"net/http"
	"net/url"

	"cellar/app/models"
	"cellar/app/services"
	"cellar/app/session"
)

type ctxKey int

const UserKey ctxKey = 1

// AdminPermission gates the admin area.
const AdminPermission = "admin.access"

type Auth struct {
	Sessions *session.Manager
	Roles    *services.RoleService
}

// RequireAuth redirects anonymous requests to the login page, preserving the
// original target in ?return=.
func (a *Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := a.Sessions.CurrentUser(r)
		if !ok {
			http.Redirect(w, r, "/login?return="+url.QueryEscape(r.URL.Path), http.StatusFound)
			return
		}
		ctx := context.WithValue(r.Context(), UserKey, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin additionally checks the user's role for the admin permission.
func (a *Auth) RequireAdmin(next http.Handler) http.Handler {
	return a.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := GetUser(r.Context())
		if u == nil || !a.Roles.HasPermission(u.Role, AdminPermission) {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

func GetUser(ctx context.Context) *models.User {
	if v := ctx.Value(UserKey); v != nil {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}
