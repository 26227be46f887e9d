package handler

import (
	"net/http"
	"time"

	"github.com/tulendi/cafe-directory/internal/middleware"
	"github.com/tulendi/cafe-directory/internal/service"
	"github.com/tulendi/cafe-directory/internal/session"
	"github.com/tulendi/cafe-directory/internal/utils"
	"github.com/tulendi/cafe-directory/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService  *service.AuthService
	sessions     *session.Store
	secret       string
	sessionTTL   time.Duration
	isProduction bool
}

func NewAuthHandler(authService *service.AuthService, sessions *session.Store, secret string, sessionTTL time.Duration, isProduction bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		sessions:     sessions,
		secret:       secret,
		sessionTTL:   sessionTTL,
		isProduction: isProduction,
	}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	// Optional admin-promotion side channel
	SecretCode string `json:"secret_code"`
}

// Register handles GET (form prompt) and POST (submission) on /register.
func (h *AuthHandler) Register(c *gin.Context) {
	if c.Request.Method == http.MethodGet {
		c.JSON(http.StatusOK, gin.H{
			"message": "Submit username, email and password to register.",
		})
		return
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Log.Warn("Registration request parsing failed",
			zap.String("ip", c.ClientIP()),
			zap.Error(err),
		)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	logger.Log.Info("User registration attempt",
		zap.String("username", req.Username),
		zap.String("email", req.Email),
		zap.String("ip", c.ClientIP()),
	)

	user, err := h.authService.Register(req.Username, req.Email, req.Password)
	if err != nil {
		if err == service.ErrEmailAlreadyExists {
			// Not a hard failure: send the caller to the login flow
			c.JSON(http.StatusConflict, gin.H{
				"message": "You've already signed up with that email, log in instead!",
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	if err := h.establishSession(c, user.ID); err != nil {
		logger.Log.Error("Failed to establish session after registration",
			zap.Uint("user_id", user.ID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to establish session",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Welcome, " + user.Username + "!",
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
			"role":     user.Role,
		},
	})
}

// Login handles GET (form prompt) and POST (submission) on /login.
func (h *AuthHandler) Login(c *gin.Context) {
	if c.Request.Method == http.MethodGet {
		c.JSON(http.StatusOK, gin.H{
			"message": "Submit email and password to log in.",
		})
		return
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Log.Warn("Login request parsing failed",
			zap.String("ip", c.ClientIP()),
			zap.Error(err),
		)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	logger.Log.Info("User login attempt",
		zap.String("email", req.Email),
		zap.String("ip", c.ClientIP()),
	)

	user, promoted, err := h.authService.Login(req.Email, req.Password, req.SecretCode)
	if err != nil {
		if err == service.ErrInvalidCredentials {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid email or password. Please try again.",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Login failed",
		})
		return
	}

	if err := h.establishSession(c, user.ID); err != nil {
		logger.Log.Error("Failed to establish session after login",
			zap.Uint("user_id", user.ID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to establish session",
		})
		return
	}

	message := "Login successful"
	if promoted {
		message = "Admin access granted!"
	}

	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
			"role":     user.Role,
		},
	})
}

// Logout destroys the current session and sends the caller back to
// the directory. Calling it without a session is a no-op.
func (h *AuthHandler) Logout(c *gin.Context) {
	if sessionID, exists := c.Get("session_id"); exists {
		if err := h.sessions.Destroy(c.Request.Context(), sessionID.(string)); err != nil {
			logger.Log.Error("Failed to destroy session",
				zap.Error(err),
			)
		}
	}

	// Expire the cookie either way
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", h.isProduction, true)

	c.Redirect(http.StatusFound, "/")
}

// establishSession creates a server-side session and sets the signed
// session cookie: HTTP-only, SameSite Lax, secure in production.
func (h *AuthHandler) establishSession(c *gin.Context, userID uint) error {
	sessionID, err := h.sessions.Create(c.Request.Context(), userID)
	if err != nil {
		return err
	}

	token, err := utils.SignSessionToken(sessionID, h.secret, h.sessionTTL)
	if err != nil {
		return err
	}

	c.SetSameSite(http.SameSiteLaxMode) // CSRF protection
	c.SetCookie(
		middleware.SessionCookieName,
		token,
		int(h.sessionTTL.Seconds()),
		"/",
		"",             // domain (empty = current domain)
		h.isProduction, // secure (HTTPS-only in production)
		true,           // httpOnly
	)

	return nil
}
