package models

// Определяем константы для ролей
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ValidRole reports whether the given role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}
