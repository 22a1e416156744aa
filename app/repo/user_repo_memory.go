package repo

import (
	"sync"
	"time"

	"cellar/app/models"
)

// MemoryUserRepository mirrors UserRepository semantics on an in-process
// map. It backs tests and carries the same at-most-once token consumption
// guarantee: the check-and-clear happens under one lock.
type MemoryUserRepository struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{nextID: 1, users: make(map[uint]*models.User)}
}

func clone(u *models.User) *models.User {
	cp := *u
	if u.PasswordResetToken != nil {
		tok := *u.PasswordResetToken
		cp.PasswordResetToken = &tok
	}
	if u.PasswordResetExpires != nil {
		exp := *u.PasswordResetExpires
		cp.PasswordResetExpires = &exp
	}
	return &cp
}

func (r *MemoryUserRepository) Create(u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return ErrEmailTaken
		}
	}
	u.ID = r.nextID
	r.nextID++
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	r.users[u.ID] = clone(u)
	return nil
}

func (r *MemoryUserRepository) FindByEmail(email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return clone(u), nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUserRepository) FindByID(id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return clone(u), nil
	}
	return nil, ErrNotFound
}

func (r *MemoryUserRepository) FindByValidResetToken(tok string, now time.Time) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u := r.findByValidToken(tok, now); u != nil {
		return clone(u), nil
	}
	return nil, ErrNotFound
}

// findByValidToken must be called with the lock held.
func (r *MemoryUserRepository) findByValidToken(tok string, now time.Time) *models.User {
	for _, u := range r.users {
		if u.PasswordResetToken != nil && *u.PasswordResetToken == tok &&
			u.PasswordResetExpires != nil && u.PasswordResetExpires.After(now) {
			return u
		}
	}
	return nil
}

func (r *MemoryUserRepository) Save(u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return ErrNotFound
	}
	u.UpdatedAt = time.Now()
	r.users[u.ID] = clone(u)
	return nil
}

func (r *MemoryUserRepository) ConsumeResetToken(tok string, now time.Time, newHash string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.findByValidToken(tok, now)
	if u == nil {
		return nil, ErrNotFound
	}
	u.PasswordHash = newHash
	u.PasswordResetToken = nil
	u.PasswordResetExpires = nil
	u.UpdatedAt = time.Now()
	return clone(u), nil
}

func (r *MemoryUserRepository) Count() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

// MemoryRoleRepository is the in-process counterpart of RoleRepository.
type MemoryRoleRepository struct {
	mu    sync.Mutex
	roles map[string]*models.Role
}

func NewMemoryRoleRepository() *MemoryRoleRepository {
	return &MemoryRoleRepository{roles: make(map[string]*models.Role)}
}

func (r *MemoryRoleRepository) FindByName(name string) (*models.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if role, ok := r.roles[name]; ok {
		cp := *role
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (r *MemoryRoleRepository) Ensure(name string, permissions string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.roles[name]; ok {
		return nil
	}
	r.roles[name] = &models.Role{ID: uint(len(r.roles) + 1), Name: name, Permissions: permissions}
	return nil
}
