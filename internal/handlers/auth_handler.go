package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/agenda-scheduler/internal/config"
	"github.com/BruksfildServices01/agenda-scheduler/internal/httperr"
	"github.com/BruksfildServices01/agenda-scheduler/internal/models"
	"github.com/BruksfildServices01/agenda-scheduler/internal/validators"
)

const tokenTTL = 24 * time.Hour

type AuthHandler struct {
	db         *gorm.DB
	config     *config.Config
	logger     *slog.Logger
	checkEmail validators.EmailCheck
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		db:         db,
		config:     cfg,
		logger:     logger,
		checkEmail: validators.IsEmailValid,
	}
}

// WithEmailCheck replaces the DNS-backed email check.
func (h *AuthHandler) WithEmailCheck(check validators.EmailCheck) *AuthHandler {
	h.checkEmail = check
	return h
}

// --------- Requests ---------

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// --------- Handlers ---------

// Register creates a client account. Owners are promoted later by a
// system administrator when their business is provisioned.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	email := validators.NormalizeEmail(req.Email)
	if !h.checkEmail(email) {
		httperr.BadRequest(c, "invalid_email_domain", "The email domain does not look valid.")
		return
	}

	var count int64
	if err := h.db.WithContext(c.Request.Context()).
		Model(&models.User{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		httperr.FromError(c, h.logger, err, "failed_to_create_user")
		return
	}
	if count > 0 {
		httperr.Conflict(c, "email_already_registered", "This email is already registered.")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httperr.FromError(c, h.logger, err, "failed_to_hash_password")
		return
	}

	user := models.User{
		Name:         req.Name,
		Email:        email,
		PasswordHash: string(hashed),
		Phone:        req.Phone,
		Role:         models.RoleClient,
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
		httperr.FromError(c, h.logger, err, "failed_to_create_user")
		return
	}

	token, err := h.generateToken(&user)
	if err != nil {
		httperr.FromError(c, h.logger, err, "failed_to_generate_token")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":  userView(&user),
		"token": token,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	email := validators.NormalizeEmail(req.Email)

	var user models.User
	if err := h.db.WithContext(c.Request.Context()).
		Where("email = ?", email).
		First(&user).Error; err != nil {

		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.Unauthorized(c, "invalid_credentials", "Invalid email or password.")
			return
		}
		httperr.FromError(c, h.logger, err, "internal_error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		httperr.Unauthorized(c, "invalid_credentials", "Invalid email or password.")
		return
	}

	token, err := h.generateToken(&user)
	if err != nil {
		httperr.FromError(c, h.logger, err, "failed_to_generate_token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  userView(&user),
		"token": token,
	})
}

// --------- JWT ---------

func (h *AuthHandler) generateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": user.Role,
		"exp":  now.Add(tokenTTL).Unix(),
		"iat":  now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.config.JWTSecret))
}
