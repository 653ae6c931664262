package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ratingtales/rating-tales/internal/captcha"
	"github.com/ratingtales/rating-tales/internal/middleware"
	"github.com/ratingtales/rating-tales/internal/models"
	"github.com/ratingtales/rating-tales/internal/service"
	"github.com/ratingtales/rating-tales/internal/session"
	"github.com/ratingtales/rating-tales/pkg/logger"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService  *service.AuthService
	sessions     *session.Store
	captcha      *captcha.Service
	cookieMaxAge int
	isProduction bool
}

func NewAuthHandler(authService *service.AuthService, sessions *session.Store, captchaSvc *captcha.Service, cookieMaxAge int, isProduction bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		sessions:     sessions,
		captcha:      captchaSvc,
		cookieMaxAge: cookieMaxAge,
		isProduction: isProduction,
	}
}

type RegisterRequest struct {
	FullName        string `form:"full_name" binding:"required"`
	Username        string `form:"username" binding:"required"`
	Age             int    `form:"age" binding:"required"`
	Gender          string `form:"gender" binding:"required"`
	Email           string `form:"email" binding:"required"`
	Password        string `form:"password" binding:"required"`
	ConfirmPassword string `form:"confirm_password" binding:"required"`
	CaptchaInput    string `form:"captcha_input" binding:"required"`
	Agree           bool   `form:"agree"`
}

type LoginRequest struct {
	UsernameOrEmail string `form:"username_or_email" binding:"required"`
	Password        string `form:"password" binding:"required"`
	CaptchaInput    string `form:"captcha_input" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		logger.Log.Warn("Registration request parsing failed",
			zap.String("ip", c.ClientIP()),
			zap.Error(err),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if !req.Agree {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You must agree to the terms"})
		return
	}

	// CAPTCHA first: the stored code is consumed whatever happens next, so
	// a failed attempt forces the client to fetch a fresh one
	if !h.verifyCaptcha(c, req.CaptchaInput) {
		return
	}

	logger.Log.Info("User registration attempt",
		zap.String("username", req.Username),
		zap.String("ip", c.ClientIP()),
	)

	user, err := h.authService.Register(service.RegisterInput{
		FullName:        req.FullName,
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Age:             req.Age,
		Gender:          models.Gender(req.Gender),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	redirect := h.bindSession(c, user)

	c.JSON(http.StatusCreated, gin.H{
		"message":  "User registered successfully",
		"redirect": redirect,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		logger.Log.Warn("Login request parsing failed",
			zap.String("ip", c.ClientIP()),
			zap.Error(err),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if !h.verifyCaptcha(c, req.CaptchaInput) {
		return
	}

	logger.Log.Info("User login attempt",
		zap.String("identifier", req.UsernameOrEmail),
		zap.String("ip", c.ClientIP()),
	)

	user, err := h.authService.Authenticate(req.UsernameOrEmail, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	redirect := h.bindSession(c, user)

	c.JSON(http.StatusOK, gin.H{
		"message":  "Login successful",
		"redirect": redirect,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	sid := sessionID(c)
	if err := h.sessions.Destroy(sid); err != nil {
		logger.Log.Error("Failed to destroy session", zap.Error(err))
	}

	// Expire the cookie immediately
	middleware.SetSessionCookie(c, "", -1, h.isProduction)

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// NewCaptcha rotates the session's challenge and returns the new code as
// plain text for the client to render.
func (h *AuthHandler) NewCaptcha(c *gin.Context) {
	code, err := h.captcha.Issue(sessionID(c))
	if err != nil {
		logger.Log.Error("Failed to issue captcha", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong. Please try again."})
		return
	}

	c.Header("Content-Type", "text/plain")
	c.String(http.StatusOK, code)
}

// verifyCaptcha consumes and checks the session's challenge code. On
// mismatch it writes the error response and returns false.
func (h *AuthHandler) verifyCaptcha(c *gin.Context, submitted string) bool {
	ok, err := h.captcha.Verify(sessionID(c), submitted)
	if err != nil {
		logger.Log.Error("Failed to verify captcha", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong. Please try again."})
		return false
	}
	if !ok {
		logger.Log.Warn("CAPTCHA verification failed", zap.String("ip", c.ClientIP()))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid CAPTCHA. Please try again."})
		return false
	}
	return true
}

// bindSession rotates the session ID (fixation defense), binds the user and
// consumes the intended destination stored by the auth gate.
func (h *AuthHandler) bindSession(c *gin.Context, user *models.User) (redirect string) {
	sid := sessionID(c)

	newID, err := h.sessions.Rotate(sid)
	if err != nil {
		logger.Log.Error("Failed to rotate session", zap.Error(err))
		newID = sid
	}

	if err := h.sessions.BindUser(newID, user.ID); err != nil {
		logger.Log.Error("Failed to bind user to session", zap.Error(err))
	}

	redirect, err = h.sessions.ConsumeIntendedURL(newID)
	if err != nil {
		redirect = session.DefaultIntendedURL
	}

	middleware.SetSessionCookie(c, newID, h.cookieMaxAge, h.isProduction)

	logger.Log.Info("Session bound",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
	)

	return redirect
}
