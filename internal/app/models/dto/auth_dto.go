package dto

// RegisterRequest creates a student account.
type RegisterRequest struct {
	Name     string  `json:"name" binding:"required,min=2,max=100" example:"Asha Verma"`
	Email    string  `json:"email" binding:"required,email" example:"asha@college.edu"`
	Password string  `json:"password" binding:"required,password" example:"secret123"`
	RollNo   string  `json:"rollNo" binding:"required,rollno" example:"21CS042"`
	Year     *int    `json:"year" binding:"omitempty,min=1,max=6" example:"2"`
	Branch   *string `json:"branch" binding:"omitempty,max=50" example:"CSE"`
}

// LoginRequest represents login credentials
type LoginRequest struct {
	RollNo   string `json:"rollNo" binding:"required" example:"21CS042"`
	Password string `json:"password" binding:"required" example:"secret123"`
}

// ChangePasswordRequest replaces the caller's password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,password"`
}

// UpdateProfileRequest changes the caller's own profile. Omitted fields are kept.
type UpdateProfileRequest struct {
	Name   *string `json:"name" binding:"omitempty,min=2,max=100"`
	Email  *string `json:"email" binding:"omitempty,email"`
	Year   *int    `json:"year" binding:"omitempty,min=1,max=6"`
	Branch *string `json:"branch" binding:"omitempty,max=50"`
}

// CreateCoordinatorRequest creates a coordinator assigned to an existing club.
type CreateCoordinatorRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,password"`
	RollNo   string `json:"rollNo" binding:"required,rollno"`
	ClubID   int64  `json:"clubId" binding:"required,min=1"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType" example:"Bearer"`
	ExpiresIn   int64  `json:"expiresIn" example:"86400"`
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token TokenResponse `json:"token"`
	User  UserResponse  `json:"user"`
}
