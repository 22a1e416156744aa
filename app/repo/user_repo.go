package repo

import (
	"errors"
	"time"

	"cellar/app/models"

	"gorm.io/gorm"
)

var (
	// ErrNotFound covers unknown emails and unknown or expired reset
	// tokens alike; callers must not distinguish the two.
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken is returned by Create when the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
)

type UserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) *UserRepository { return &UserRepository{db: db} }

func (r *UserRepository) Create(u *models.User) error {
	if err := r.db.Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *UserRepository) FindByEmail(email string) (*models.User, error) {
	var u models.User
	if err := r.db.Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) FindByID(id uint) (*models.User, error) {
	var u models.User
	if err := r.db.First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FindByValidResetToken filters on token equality and on expiry still being
// in the future; an expired token misses exactly like an unknown one.
func (r *UserRepository) FindByValidResetToken(tok string, now time.Time) (*models.User, error) {
	var u models.User
	err := r.db.Where("password_reset_token = ? AND password_reset_expires > ?", tok, now).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Save(u *models.User) error {
	return r.db.Save(u).Error
}

// ConsumeResetToken sets the new password hash and clears the token in one
// conditional UPDATE keyed on the token still being present and unexpired.
// When two consumers race on the same token the database applies exactly one
// of the writes; the loser sees zero affected rows and gets ErrNotFound.
func (r *UserRepository) ConsumeResetToken(tok string, now time.Time, newHash string) (*models.User, error) {
	u, err := r.FindByValidResetToken(tok, now)
	if err != nil {
		return nil, err
	}
	res := r.db.Model(&models.User{}).
		Where("id = ? AND password_reset_token = ?", u.ID, tok).
		Updates(map[string]interface{}{
			"password_hash":          newHash,
			"password_reset_token":   nil,
			"password_reset_expires": nil,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	u.PasswordHash = newHash
	u.PasswordResetToken = nil
	u.PasswordResetExpires = nil
	return u, nil
}

func (r *UserRepository) Count() (int64, error) {
	var count int64
	return count, r.db.Model(&models.User{}).Count(&count).Error
}
