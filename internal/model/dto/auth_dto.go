package dto

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=32"`
	Bio      string `json:"bio" binding:"max=500"`
	WaNumber string `json:"wa_number" binding:"max=30"`
	Address  string `json:"address" binding:"max=200"`
}

// RegisterResponse 注册响应
type RegisterResponse struct {
	UserID int64 `json:"user_id"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token string    `json:"token"`
	User  *UserInfo `json:"user"`
}

// VerifyEmailRequest 邮箱验证请求
type VerifyEmailRequest struct {
	Code string `json:"code" binding:"required"`
}

// UserInfo 用户信息（返回给前端）
type UserInfo struct {
	ID             int64   `json:"id"`
	Username       string  `json:"username"`
	Name           string  `json:"name"`
	Email          string  `json:"email,omitempty"`
	AvatarURL      string  `json:"avatar_url"`
	Bio            string  `json:"bio"`
	WaNumber       string  `json:"wa_number,omitempty"`
	Address        string  `json:"address,omitempty"`
	Role           string  `json:"role"`
	FollowerCount  int     `json:"follower_count"`
	FollowingCount int     `json:"following_count"`
	Balance        float64 `json:"balance"`
	EmailVerified  bool    `json:"email_verified,omitempty"`
	CreatedAt      string  `json:"created_at,omitempty"`
}

// UpdateProfileRequest 更新用户信息请求
type UpdateProfileRequest struct {
	Name     *string `json:"name,omitempty" binding:"omitempty,max=100"`
	Bio      *string `json:"bio,omitempty" binding:"omitempty,max=500"`
	WaNumber *string `json:"wa_number,omitempty" binding:"omitempty,max=30"`
	Address  *string `json:"address,omitempty" binding:"omitempty,max=200"`
}
