package account

import (
	"time"

	"github.com/google/uuid"
)

// Account is a platform user: a patient, a doctor, or an admin.
type Account struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	Username     string     `db:"username" json:"username"`
	FullName     string     `db:"full_name" json:"full_name"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         string     `db:"role" json:"role"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	Phone        string     `db:"phone" json:"phone,omitempty"`
	DateOfBirth  *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Age derives the account holder's age in whole years, or 0 when the date
// of birth is unknown.
func (a *Account) Age(now time.Time) int {
	if a.DateOfBirth == nil {
		return 0
	}
	years := now.Year() - a.DateOfBirth.Year()
	if now.YearDay() < a.DateOfBirth.YearDay() {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}
