package auth

// SignupDTO is the account registration payload. New accounts always start
// as lector; roles are only raised through the moderation engine.
type SignupDTO struct {
	Name     string `json:"nombre" binding:"required"`
	Email    string `json:"correo" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Phone    string `json:"telefono"`
}

// LoginDTO is the credential payload.
type LoginDTO struct {
	Email    string `json:"correo" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
