package domain

// Roles a user can sign up with
const (
	RoleUser     = "User"
	RoleRetailer = "Retailer"
)

// User Model
type User struct {
	Username string `gorm:"primaryKey"` // Unique username
	Password string `gorm:"not null"`   // Bcrypt hash, never plaintext
	Name     string `gorm:"not null"`   // Display name
	Role     string `gorm:"not null"`   // Role: User or Retailer
}

// ValidRole reports whether role is one of the two supported roles.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleRetailer
}
