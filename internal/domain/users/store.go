package users

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("user not found")

func FindByID(db *gorm.DB, id uint) (User, error) {
	var u User
	if err := db.First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

func FindByEmail(db *gorm.DB, email string) (User, error) {
	var u User
	err := db.Where("email = ?", NormalizeEmail(email)).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return User{}, ErrNotFound
	}
	return u, err
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
