package health_fields

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User contains the user table in hridamrit. It should be kept simple and
// only contain the fields that are needed.
type User struct {
	gorm.Model
	Email      string `json:"email" gorm:"index:idx_email,unique"`
	Password   string `json:"-"`
	Fullname   string `json:"full_name"`
	Phone      string `json:"phone"`
	IsVerified bool   `json:"is_verified" gorm:"default:false"`
}

// GetUserByEmail retrieves a user from the database by email.
func GetUserByEmail(email string, db *gorm.DB) (User, error) {
	var user User
	result := db.First(&user, "email = ?", strings.ToLower(email))
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return user, errors.New("user not found")
	}
	return user, result.Error
}

// GetUserByID retrieves a user from the database by its primary key.
func GetUserByID(id uint, db *gorm.DB) (User, error) {
	var user User
	result := db.First(&user, id)
	return user, result.Error
}

func (u *User) SanitizeEmail() {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
}

func (u *User) HashPassword() error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), 8)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// ComparePassword checks a plaintext candidate against the stored hash.
func (u User) ComparePassword(candidate string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(candidate))
}
