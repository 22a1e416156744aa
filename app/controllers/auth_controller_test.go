package controllers_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"cellar/app/controllers"
	jwtutil "cellar/app/jwt"
	"cellar/app/mailer"
	"cellar/app/middleware"
	"cellar/app/repo"
	"cellar/app/services"
	"cellar/app/session"
	"cellar/app/token"
	"cellar/app/views"
	"cellar/router"
)

type nullSender struct{}

func (nullSender) Send(context.Context, mailer.Message) error { return nil }

type testApp struct {
	handler  http.Handler
	users    *repo.MemoryUserRepository
	svc      *services.UserService
	sessions *session.Manager
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	users := repo.NewMemoryUserRepository()
	roles := repo.NewMemoryRoleRepository()
	roleSvc := services.NewRoleService(roles)
	if err := roleSvc.SeedDefaults(); err != nil {
		t.Fatalf("seed roles: %v", err)
	}
	userSvc := services.NewUserService(users, token.NewIssuer(), nullSender{}, "Cellar")

	signer := &jwtutil.Signer{Secret: []byte("test-secret"), Issuer: "cellar", TTL: time.Hour}
	sessions := session.NewManager(session.NewMemoryStore(), signer, users, time.Hour)

	renderer, err := views.New("Cellar")
	if err != nil {
		t.Fatalf("views: %v", err)
	}
	authCtrl := controllers.NewAuthController(userSvc, sessions, renderer, "http://localhost:3000")
	pagesCtrl := controllers.NewPagesController(sessions, renderer)
	adminCtrl := controllers.NewAdminController(sessions, renderer)
	mw := &middleware.Auth{Sessions: sessions, Roles: roleSvc}

	h := router.New(pagesCtrl, authCtrl, adminCtrl, mw, http.Dir(t.TempDir()))
	return &testApp{handler: h, users: users, svc: userSvc, sessions: sessions}
}

// jar is a minimal cookie jar for chaining requests through redirects.
type jar struct{ cookies map[string]*http.Cookie }

func newJar() *jar { return &jar{cookies: make(map[string]*http.Cookie)} }

func (j *jar) absorb(rec *httptest.ResponseRecorder) {
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(j.cookies, c.Name)
			continue
		}
		j.cookies[c.Name] = c
	}
}

func (a *testApp) request(t *testing.T, j *jar, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, c := range j.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	j.absorb(rec)
	return rec
}

func (a *testApp) body(t *testing.T, j *jar, target string) string {
	t.Helper()
	rec := a.request(t, j, http.MethodGet, target, nil)
	return rec.Body.String()
}

func TestRegisterAndDashboard(t *testing.T) {
	app := newTestApp(t)
	j := newJar()

	rec := app.request(t, j, http.MethodPost, "/register", url.Values{
		"name":     {"Alice"},
		"email":    {"alice@example.com"},
		"password": {"secret123"},
	})
	if rec.Code != http.StatusFound {
		t.Fatalf("register status %d", rec.Code)
	}
	if rec.Header().Get("Location") != "/" {
		t.Fatalf("register redirects to %q", rec.Header().Get("Location"))
	}

	// Registration logs the user in.
	body := app.body(t, j, "/dashboard")
	if !strings.Contains(body, "alice@example.com") {
		t.Fatalf("dashboard missing user email")
	}
}

func TestRegisterValidationFlashes(t *testing.T) {
	app := newTestApp(t)
	j := newJar()

	rec := app.request(t, j, http.MethodPost, "/register", url.Values{
		"name":     {"Alice"},
		"email":    {"alice@example.com"},
		"password": {"short"},
	})
	if loc := rec.Header().Get("Location"); loc != "/register" {
		t.Fatalf("redirects to %q", loc)
	}
	body := app.body(t, j, "/register")
	if !strings.Contains(body, "Password must be at least 8 characters long") {
		t.Fatalf("flash missing from body")
	}
}

func TestLoginGenericErrorHidesEnumeration(t *testing.T) {
	app := newTestApp(t)
	if _, err := app.svc.Register("Alice", "alice@example.com", "secret123"); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	flashFor := func(form url.Values) string {
		j := newJar()
		app.request(t, j, http.MethodPost, "/login", form)
		return app.body(t, j, "/login")
	}

	wrongPass := flashFor(url.Values{"email": {"alice@example.com"}, "password": {"wrong"}})
	unknown := flashFor(url.Values{"email": {"nobody@example.com"}, "password": {"secret123"}})
	const generic = "invalid email or password"
	if !strings.Contains(wrongPass, generic) || !strings.Contains(unknown, generic) {
		t.Fatalf("generic credential error missing")
	}
}

func TestLoginSuccessAndReturnTarget(t *testing.T) {
	app := newTestApp(t)
	if _, err := app.svc.Register("Alice", "alice@example.com", "secret123"); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	j := newJar()
	rec := app.request(t, j, http.MethodPost, "/login?return=%2Fdashboard", url.Values{
		"email":    {"alice@example.com"},
		"password": {"secret123"},
	})
	if loc := rec.Header().Get("Location"); loc != "/dashboard" {
		t.Fatalf("redirects to %q, want /dashboard", loc)
	}
	if _, ok := app.sessions.CurrentUser(cookieRequest(j, "/")); !ok {
		t.Fatalf("no session established")
	}
}

func cookieRequest(j *jar, target string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range j.cookies {
		req.AddCookie(c)
	}
	return req
}

func TestForgotIsEnumerationSafe(t *testing.T) {
	app := newTestApp(t)
	if _, err := app.svc.Register("Alice", "alice@example.com", "secret123"); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	flashFor := func(email string) string {
		j := newJar()
		rec := app.request(t, j, http.MethodPost, "/forgot", url.Values{"email": {email}})
		if loc := rec.Header().Get("Location"); loc != "/forgot" {
			t.Fatalf("redirects to %q", loc)
		}
		return app.body(t, j, "/forgot")
	}

	const notice = "An email has been sent to the requested email with further instructions."
	known := flashFor("alice@example.com")
	unknown := flashFor("nobody@example.com")
	if !strings.Contains(known, notice) || !strings.Contains(unknown, notice) {
		t.Fatalf("outward responses differ between known and unknown email")
	}
}

func TestResetFlowOverHTTP(t *testing.T) {
	app := newTestApp(t)
	if _, err := app.svc.Register("Alice", "alice@example.com", "secret123"); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	j := newJar()
	app.request(t, j, http.MethodPost, "/forgot", url.Values{"email": {"alice@example.com"}})

	u, err := app.users.FindByEmail("alice@example.com")
	if err != nil || u.PasswordResetToken == nil {
		t.Fatalf("no reset token persisted")
	}
	tok := *u.PasswordResetToken

	if rec := app.request(t, j, http.MethodGet, "/reset/"+tok, nil); rec.Code != http.StatusOK {
		t.Fatalf("reset page status %d", rec.Code)
	}

	rec := app.request(t, j, http.MethodPost, "/reset/"+tok, url.Values{
		"password": {"newpass123"},
		"confirm":  {"newpass123"},
	})
	if loc := rec.Header().Get("Location"); loc != "/dashboard" {
		t.Fatalf("redirects to %q, want /dashboard", loc)
	}

	// Old password dead, new one works.
	if _, err := app.svc.Authenticate("alice@example.com", "secret123"); err == nil {
		t.Fatalf("old password still valid")
	}
	if _, err := app.svc.Authenticate("alice@example.com", "newpass123"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}

	// The link is single-use.
	if rec := app.request(t, newJar(), http.MethodGet, "/reset/"+tok, nil); rec.Header().Get("Location") != "/forgot" {
		t.Fatalf("consumed token did not bounce to /forgot")
	}
}

func TestInvalidResetTokenBouncesToForgot(t *testing.T) {
	app := newTestApp(t)
	j := newJar()

	rec := app.request(t, j, http.MethodGet, "/reset/deadbeef", nil)
	if loc := rec.Header().Get("Location"); loc != "/forgot" {
		t.Fatalf("redirects to %q, want /forgot", loc)
	}
	body := app.body(t, j, "/forgot")
	if !strings.Contains(body, "invalid or has expired") {
		t.Fatalf("explanatory flash missing")
	}
}

func TestAdminGate(t *testing.T) {
	app := newTestApp(t)

	// Anonymous: redirect to login.
	rec := app.request(t, newJar(), http.MethodGet, "/admin", nil)
	if rec.Code != http.StatusFound || !strings.HasPrefix(rec.Header().Get("Location"), "/login") {
		t.Fatalf("anonymous admin access: %d -> %q", rec.Code, rec.Header().Get("Location"))
	}

	// Plain user: forbidden.
	if _, err := app.svc.Register("Bob", "bob@example.com", "secret123"); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	j := newJar()
	app.request(t, j, http.MethodPost, "/login", url.Values{"email": {"bob@example.com"}, "password": {"secret123"}})
	if rec := app.request(t, j, http.MethodGet, "/admin", nil); rec.Code != http.StatusForbidden {
		t.Fatalf("plain user admin access: %d", rec.Code)
	}

	// Admin: allowed.
	if err := app.svc.EnsureAdmin("Root", "root@example.com", "adminpass1"); err != nil {
		t.Fatalf("EnsureAdmin error: %v", err)
	}
	ja := newJar()
	app.request(t, ja, http.MethodPost, "/login", url.Values{"email": {"root@example.com"}, "password": {"adminpass1"}})
	if rec := app.request(t, ja, http.MethodGet, "/admin", nil); rec.Code != http.StatusOK {
		t.Fatalf("admin access: %d", rec.Code)
	}
}

func TestLogout(t *testing.T) {
	app := newTestApp(t)
	if _, err := app.svc.Register("Alice", "alice@example.com", "secret123"); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	j := newJar()
	app.request(t, j, http.MethodPost, "/login", url.Values{"email": {"alice@example.com"}, "password": {"secret123"}})
	app.request(t, j, http.MethodGet, "/logout", nil)

	rec := app.request(t, j, http.MethodGet, "/dashboard", nil)
	if rec.Code != http.StatusFound {
		t.Fatalf("dashboard reachable after logout: %d", rec.Code)
	}
}

func TestUnknownPathRenders404(t *testing.T) {
	app := newTestApp(t)
	rec := app.request(t, newJar(), http.MethodGet, "/no-such-page", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rec.Code)
	}
}
