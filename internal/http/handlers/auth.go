package handlers

import (
	"net/http"

	"backend/internal/http/middleware"
	"backend/internal/services"
	"backend/internal/utils"

	"github.com/gin-gonic/gin"
)

var jwtSecret = []byte("super-secret-key-change-me")

// SetJWTSecret overrides the signing secret; called once at router setup.
func SetJWTSecret(secret string) {
	if secret != "" {
		jwtSecret = []byte(secret)
	}
}

// JWTSecret exposes the active secret for the auth middleware.
func JWTSecret() []byte { return jwtSecret }

func accounts(c *gin.Context) services.AccountService {
	return services.AccountService{RequestID: middleware.GetRequestID(c)}
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// POST /api/auth/register
func Register(c *gin.Context) {
	var req registerRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	user, err := accounts(c).Register(req.Username, req.Email, req.Password)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

type loginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// POST /api/auth/login
func Login(c *gin.Context) {
	var req loginRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	user, err := accounts(c).Login(req.Login, req.Password)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	token, err := utils.GenerateToken(user.ID, jwtSecret)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "failed to sign token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// GET /api/me
func Me(c *gin.Context) {
	user, err := accounts(c).Profile(middleware.GetPrincipal(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

type updateProfileRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
}

// PUT /api/me
func UpdateMe(c *gin.Context) {
	var req updateProfileRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	user, err := accounts(c).UpdateProfile(middleware.GetPrincipal(c), req.Username, req.Email)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// PUT /api/me/password
func ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if err := accounts(c).ChangePassword(middleware.GetPrincipal(c), req.OldPassword, req.NewPassword); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "password updated"})
}

type changeRoleRequest struct {
	Username string `json:"username" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

// PUT /api/users/roles
func ChangeUserRole(c *gin.Context) {
	var req changeRoleRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if err := accounts(c).ChangeUserRole(middleware.GetPrincipal(c), req.Username, req.Role); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "user role updated"})
}
