package session

import (
	"encoding/json"
	"net/http"
	"time"

	jwtutil "cellar/app/jwt"
	"cellar/app/models"

	"github.com/google/uuid"
)

const CookieName = "cellar_session"

// Flash is a one-shot user-facing notice, cleared on first read.
type Flash struct {
	Kind string `json:"kind"` // error | info | success
	Msg  string `json:"msg"`
}

type UserFinder interface {
	FindByID(id uint) (*models.User, error)
}

// Manager ties the signed session cookie to the backing Store. The cookie
// carries only a signed session ID; user identity lives server-side.
type Manager struct {
	store  Store
	signer *jwtutil.Signer
	users  UserFinder
	ttl    time.Duration
}

func NewManager(store Store, signer *jwtutil.Signer, users UserFinder, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Manager{store: store, signer: signer, users: users, ttl: ttl}
}

func (m *Manager) setCookie(w http.ResponseWriter, sid string) error {
	signed, err := m.signer.Sign(sid)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// sid returns the session ID carried by the request cookie, if the
// signature checks out.
func (m *Manager) sid(r *http.Request) (string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return "", false
	}
	claims, err := m.signer.Parse(c.Value)
	if err != nil {
		return "", false
	}
	return claims.SessionID, true
}

// ensureSID returns the request's session ID, minting a guest session when
// there is none. Guest sessions exist only in the cookie; the store holds no
// record until login.
func (m *Manager) ensureSID(w http.ResponseWriter, r *http.Request) (string, error) {
	if sid, ok := m.sid(r); ok {
		return sid, nil
	}
	sid := uuid.NewString()
	if err := m.setCookie(w, sid); err != nil {
		return "", err
	}
	return sid, nil
}

// Login binds the user to a fresh session ID. The ID is always regenerated
// so a pre-login cookie can never be promoted.
func (m *Manager) Login(w http.ResponseWriter, r *http.Request, u *models.User) error {
	if old, ok := m.sid(r); ok {
		_ = m.store.Delete(r.Context(), old)
	}
	sid := uuid.NewString()
	if err := m.store.Set(r.Context(), sid, u.ID, m.ttl); err != nil {
		return err
	}
	return m.setCookie(w, sid)
}

func (m *Manager) Logout(w http.ResponseWriter, r *http.Request) {
	if sid, ok := m.sid(r); ok {
		_ = m.store.Delete(r.Context(), sid)
	}
	http.SetCookie(w, &http.Cookie{Name: CookieName, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
}

// CurrentUser resolves the request's session to a user record. Every call
// reads the store; user records are never cached in-process.
func (m *Manager) CurrentUser(r *http.Request) (*models.User, bool) {
	sid, ok := m.sid(r)
	if !ok {
		return nil, false
	}
	userID, err := m.store.Get(r.Context(), sid)
	if err != nil {
		return nil, false
	}
	u, err := m.users.FindByID(userID)
	if err != nil {
		return nil, false
	}
	return u, true
}

func (m *Manager) Flash(w http.ResponseWriter, r *http.Request, kind, msg string) {
	sid, err := m.ensureSID(w, r)
	if err != nil {
		return
	}
	raw, _ := json.Marshal(Flash{Kind: kind, Msg: msg})
	_ = m.store.PushFlash(r.Context(), sid, m.ttl, string(raw))
}

// PopFlashes drains the pending flash messages for this session.
func (m *Manager) PopFlashes(r *http.Request) []Flash {
	sid, ok := m.sid(r)
	if !ok {
		return nil
	}
	raws, err := m.store.PopFlashes(r.Context(), sid)
	if err != nil {
		return nil
	}
	flashes := make([]Flash, 0, len(raws))
	for _, raw := range raws {
		var f Flash
		if json.Unmarshal([]byte(raw), &f) == nil {
			flashes = append(flashes, f)
		}
	}
	return flashes
}
