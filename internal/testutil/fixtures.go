package testutil

import (
	"github.com/tulendi/cafe-directory/internal/models"
	"github.com/tulendi/cafe-directory/internal/utils"
)

// CreateTestUser builds a user with a real Argon2id password hash.
func CreateTestUser(username, email, password string, role models.Role) (*models.User, error) {
	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	return &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         role,
	}, nil
}

// DefaultTestUser returns a default regular user
func DefaultTestUser() (*models.User, error) {
	return CreateTestUser("testuser", "test@example.com", "Test123456", models.RoleUser)
}

// DefaultAdminUser returns a default admin user
func DefaultAdminUser() (*models.User, error) {
	return CreateTestUser("admin", "admin@example.com", "Admin123456", models.RoleAdmin)
}

// CreateTestCafe builds a cafe record with sensible defaults.
func CreateTestCafe(name, location string, authorID *uint) *models.Cafe {
	return &models.Cafe{
		AuthorID:     authorID,
		Name:         name,
		MapURL:       "https://maps.example.com/" + name,
		ImgURL:       "https://img.example.com/" + name + ".jpg",
		Location:     location,
		Seats:        "20-30",
		HasToilet:    true,
		HasWifi:      true,
		HasSockets:   false,
		CanTakeCalls: false,
		CoffeePrice:  "£2.50",
	}
}
