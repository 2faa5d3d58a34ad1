package handler

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateNameRequest struct {
	Name string `json:"name"`
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type deleteAccountRequest struct {
	Password string `json:"password"`
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

type purchaseRequest struct {
	UserID    string `json:"userId"`
	PackageID string `json:"packageId"`
}

type editImageRequest struct {
	Email    string `json:"email"`
	ImageURL string `json:"imageUrl"`
}

// --- Константы для валидации ---
const minPasswordLength = 6
