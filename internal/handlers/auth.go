package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/thereayou/automart/internal/database"
	"github.com/thereayou/automart/internal/handlers/dto"
	"github.com/thereayou/automart/internal/middleware"
	"github.com/thereayou/automart/internal/models"
	"github.com/thereayou/automart/pkg/auth"
)

type AuthHandler struct {
	db         *database.Database
	jwtManager *auth.JWTManager
	blacklist  middleware.TokenBlacklist
	log        *slog.Logger
}

func NewAuthHandler(db *database.Database, jwtMgr *auth.JWTManager, blacklist middleware.TokenBlacklist, log *slog.Logger) *AuthHandler {
	return &AuthHandler{db: db, jwtManager: jwtMgr, blacklist: blacklist, log: log}
}

// Signup регистрирует пользователя и сразу выдаёт токен
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := h.db.FindUserByEmail(email); err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "User already exists with this email"})
		return
	} else if !database.IsNotFound(err) {
		h.log.Error("signup lookup failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error during signup"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "cannot hash password"})
		return
	}

	now := time.Now()
	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		LastSeenAt:   now,
		CreatedAt:    now,
	}

	if err := h.db.SaveUser(user); err != nil {
		h.log.Error("signup save failed", "err", err)
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "failed to create user"})
		return
	}

	token, err := h.jwtManager.Generate(user.ID.String(), user.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "could not generate token"})
		return
	}

	h.log.Info("user signed up", "user", user.ID)
	c.JSON(http.StatusCreated, dto.AuthResponse{
		Success: true,
		Message: "User registered successfully",
		Token:   token,
		User:    user,
	})
}

// Login выдаёт JWT и обновляет last_seen
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	user, err := h.db.FindUserByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid email or password"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid email or password"})
		return
	}

	if err := h.db.UpdateLastSeen(user.ID.String()); err != nil {
		if database.IsNotFound(err) {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid email or password"})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "could not update last seen"})
		return
	}

	token, err := h.jwtManager.Generate(user.ID.String(), user.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "could not generate token"})
		return
	}

	c.JSON(http.StatusOK, dto.AuthResponse{
		Success: true,
		Message: "Login successful",
		Token:   token,
		User:    user,
	})
}

// Logout ставит токен в черный список в Redis до истечения
func (h *AuthHandler) Logout(c *gin.Context) {
	rawToken := c.GetString(middleware.TokenKey)

	exp, err := h.jwtManager.Expiry(rawToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid token"})
		return
	}

	if err := h.blacklist.Revoke(c.Request.Context(), rawToken, time.Until(exp)); err != nil {
		h.log.Error("token revoke failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "could not log out"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out"})
}
