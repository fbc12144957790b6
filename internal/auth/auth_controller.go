package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dhruvpatel-01/fantasyfc/config"
	"github.com/dhruvpatel-01/fantasyfc/internal/common"
	"github.com/dhruvpatel-01/fantasyfc/internal/team"
	"github.com/dhruvpatel-01/fantasyfc/internal/user"
	"github.com/dhruvpatel-01/fantasyfc/pkg/responses"
	"github.com/dhruvpatel-01/fantasyfc/pkg/token"
	"github.com/dhruvpatel-01/fantasyfc/pkg/validator"
	"github.com/dhruvpatel-01/fantasyfc/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuthController struct {
	repo   AuthRepository
	config *config.Config
}

func NewAuthController(repo AuthRepository, cfg *config.Config) *AuthController {
	return &AuthController{
		repo:   repo,
		config: cfg,
	}
}

func (ac *AuthController) generateAndSaveTokens(userID uint) (string, string, error) {
	accessToken, err := token.GenerateJWT(userID, ac.config.JWT.AccessTokenSecret, ac.config.JWT.AccessTokenExpiryMinutes)
	if err != nil {
		return "", "", fmt.Errorf("access token generation failed: %w", err)
	}

	refreshTokenString, err := token.GenerateRefreshToken(userID, ac.config.JWT.RefreshTokenSecret, ac.config.JWT.RefreshTokenExpiryDays)
	if err != nil {
		return "", "", fmt.Errorf("refresh token generation failed: %w", err)
	}

	refreshToken := &user.RefreshToken{
		UserID:    userID,
		Token:     refreshTokenString,
		ExpiresAt: time.Now().AddDate(0, 0, ac.config.JWT.RefreshTokenExpiryDays),
	}

	if err := ac.repo.SaveRefreshToken(refreshToken); err != nil {
		return "", "", fmt.Errorf("failed to save refresh token: %w", err)
	}
	return accessToken, refreshTokenString, nil
}

// Register godoc
// @Summary      Register a new user
// @Description  Create a new account. Registration provisions the user's team with its starting capital and an initial 20-player roster in one transaction.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        user  body  RegisterRequest  true  "User registration details"
// @Success      201   {object} responses.SuccessResponse{data=AuthResponse}
// @Failure      400   {object} responses.ErrorResponse "Validation error"
// @Failure      409   {object} responses.ErrorResponse "Username or email already taken"
// @Router       /auth/register [post]
func (ac *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendError(c, http.StatusBadRequest, "Validation failed", validator.ParseError(err))
		return
	}

	if _, err := ac.repo.GetUserByEmail(req.Email); !errors.Is(err, gorm.ErrRecordNotFound) {
		responses.SendError(c, http.StatusConflict, "User with this email already exists", nil)
		return
	}
	if _, err := ac.repo.GetUserByUsername(req.Username); !errors.Is(err, gorm.ErrRecordNotFound) {
		responses.SendError(c, http.StatusConflict, "User with this username already exists", nil)
		return
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		responses.InternalServerError(c, "Failed to process password")
		return
	}

	newUser := &user.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hashed,
	}

	// The team and its starting roster are provisioned in the same
	// transaction as the user row.
	err = ac.repo.CreateUser(newUser, func(tx *gorm.DB, u *user.User) error {
		_, err := team.ProvisionTeam(tx, u.ID, u.Username)
		return err
	})
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to register user", err.Error())
		return
	}

	accessToken, refreshToken, err := ac.generateAndSaveTokens(newUser.ID)
	if err != nil {
		responses.InternalServerError(c, err.Error())
		return
	}

	responses.SendSuccess(c, http.StatusCreated, "User registered successfully", AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         FilterUserRecord(newUser),
	})
}

// Login godoc
// @Summary      Log in
// @Description  Authenticate with username or email plus password.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        credentials  body  LoginRequest  true  "Login credentials"
// @Success      200  {object} responses.SuccessResponse{data=AuthResponse}
// @Failure      401  {object} responses.ErrorResponse "Invalid credentials"
// @Router       /auth/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendError(c, http.StatusBadRequest, "Validation failed", validator.ParseError(err))
		return
	}

	u, err := ac.repo.GetUserByEmail(req.LoginIdentifier)
	if err != nil {
		u, err = ac.repo.GetUserByUsername(req.LoginIdentifier)
	}
	if err != nil || !utils.CheckPassword(u.Password, req.Password) {
		responses.Unauthorized(c, "Invalid credentials")
		return
	}

	accessToken, refreshToken, err := ac.generateAndSaveTokens(u.ID)
	if err != nil {
		responses.InternalServerError(c, err.Error())
		return
	}

	responses.SendSuccess(c, http.StatusOK, "Logged in successfully", AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         FilterUserRecord(u),
	})
}

// RefreshToken godoc
// @Summary      Refresh the access token
// @Description  Exchange a valid refresh token for a new token pair; the old refresh token is revoked.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        refresh  body  RefreshTokenRequest  true  "Refresh token"
// @Success      200  {object} responses.SuccessResponse{data=AuthResponse}
// @Failure      401  {object} responses.ErrorResponse "Invalid or expired refresh token"
// @Router       /auth/refresh-token [post]
func (ac *AuthController) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendError(c, http.StatusBadRequest, "Validation failed", validator.ParseError(err))
		return
	}

	claims, err := token.ValidateJWT(req.RefreshToken, ac.config.JWT.RefreshTokenSecret)
	if err != nil {
		responses.Unauthorized(c, "Invalid refresh token: "+err.Error())
		return
	}

	stored, err := ac.repo.GetRefreshToken(req.RefreshToken)
	if err != nil || stored.ExpiresAt.Before(time.Now()) {
		responses.Unauthorized(c, "Refresh token is revoked or expired")
		return
	}

	u, err := ac.repo.GetUserByID(claims.UserID)
	if err != nil {
		responses.Unauthorized(c, "User not found")
		return
	}

	// Rotate: revoke the presented token before issuing a new pair.
	if err := ac.repo.InvalidateRefreshToken(req.RefreshToken); err != nil {
		responses.InternalServerError(c, "Failed to rotate refresh token")
		return
	}

	accessToken, refreshToken, err := ac.generateAndSaveTokens(u.ID)
	if err != nil {
		responses.InternalServerError(c, err.Error())
		return
	}

	responses.SendSuccess(c, http.StatusOK, "Token refreshed", AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         FilterUserRecord(u),
	})
}

// GetProfile godoc
// @Summary      Get the authenticated user
// @Tags         Auth
// @Produce      json
// @Success      200  {object} responses.SuccessResponse{data=UserResponse}
// @Failure      401  {object} responses.ErrorResponse
// @Router       /auth/me [get]
// @Security     BearerAuth
func (ac *AuthController) GetProfile(c *gin.Context) {
	userID, err := common.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "")
		return
	}

	u, err := ac.repo.GetUserByID(userID)
	if err != nil {
		responses.NotFound(c, "User")
		return
	}

	responses.SendSuccess(c, http.StatusOK, "Profile retrieved successfully", FilterUserRecord(u))
}
