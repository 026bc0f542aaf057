package controllers

import (
	"CourseLoom/internal/app_errors"
	"CourseLoom/internal/models"
	"CourseLoom/pkg/logger"
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type AuthService interface {
	Register(ctx context.Context, user models.User) (*models.User, error)
	LoginUser(ctx context.Context, username, password string) (accessToken, refreshToken string, err error)
	RefreshTokens(ctx context.Context, token string) (*models.TokenPair, error)
	ParseToken(ctx context.Context, token string) (*jwt.Token, error)
	IsAccessToken(ctx context.Context, token *jwt.Token) bool
	AccessClaims(ctx context.Context, token string) (userID uuid.UUID, role string, err error)
	User(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type AuthHandler struct {
	AuthService AuthService
	log         logger.Log
}

func NewAuthHandler(l logger.Log, auth AuthService) *AuthHandler {
	return &AuthHandler{
		AuthService: auth,
		log:         l,
	}
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Role     string `json:"role"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var input registerRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := models.User{
		Username: input.Username,
		Password: input.Password,
		Email:    input.Email,
		Role:     input.Role,
	}

	created, err := h.AuthService.Register(c.Request.Context(), user)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondCreated(c, "registration success", gin.H{"id": created.ID})
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input loginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	accessToken, refreshToken, err := h.AuthService.LoginUser(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		if errors.Is(err, app_errors.ErrUserNotFound) || errors.Is(err, app_errors.ErrIncorrectPassword) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		respondError(c, h.log, err)
		return
	}

	respondOK(c, "login success", tokenPairResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

type tokenRefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var input tokenRefreshRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tokenPair, err := h.AuthService.RefreshTokens(c.Request.Context(), input.RefreshToken)
	if err != nil {
		if errors.Is(err, app_errors.ErrUserNotFound) ||
			errors.Is(err, app_errors.ErrTokenNotFound) ||
			errors.Is(err, app_errors.ErrTokenExpired) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		respondError(c, h.log, err)
		return
	}

	respondOK(c, "token refreshed", tokenPairResponse{
		AccessToken:  tokenPair.AccessToken.Raw,
		RefreshToken: tokenPair.RefreshToken.Raw,
	})
}

type meResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := clientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	user, err := h.AuthService.User(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondOK(c, "ok", meResponse{
		UserID:   user.ID.String(),
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	})
}

func clientID(c *gin.Context) (uuid.UUID, bool) {
	val, exists := c.Get(ClientIDCtx)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := val.(uuid.UUID)
	return id, ok
}

func clientRole(c *gin.Context) string {
	val, exists := c.Get(ClientRoleCtx)
	if !exists {
		return ""
	}
	role, _ := val.(string)
	return role
}
