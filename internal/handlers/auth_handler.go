package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/stwalsh4118/valuator/api/internal/errors"
	"github.com/stwalsh4118/valuator/api/internal/middleware"
	"github.com/stwalsh4118/valuator/api/internal/services"
)

// Redirect targets of the form flow.
const (
	DashboardPath = "/dashboard"
	StepOnePath   = "/form-step1"
	stepTwoPrefix = "/form-step2/"
)

// AuthHandler handles login, registration and logout.
type AuthHandler struct {
	auth         services.AuthService
	sessions     *services.TokenIssuer
	cookieSecure bool
}

// NewAuthHandler creates a new AuthHandler instance.
func NewAuthHandler(auth services.AuthService, sessions *services.TokenIssuer, cookieSecure bool) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions, cookieSecure: cookieSecure}
}

// CredentialsRequest is the login and registration form.
type CredentialsRequest struct {
	Username string `form:"username" json:"username" binding:"required,max=128"`
	Password string `form:"password" json:"password" binding:"required,max=72"`
}

// Login handles POST / and POST /login. A valid pair sets the session cookie
// and redirects to step 1.
func (h *AuthHandler) Login(c *gin.Context) {
	var req CredentialsRequest
	if !bindRequest(c, &req) {
		return
	}

	user, err := h.auth.Validate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			apierrors.Unauthorized(c, "Invalid username or password")
			return
		}
		apierrors.InternalServerError(c, "Failed to log in", err)
		return
	}

	token, _, err := h.sessions.Issue(user)
	if err != nil {
		apierrors.InternalServerError(c, "Failed to log in", err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, int(h.sessions.TTL().Seconds()), "/", "", h.cookieSecure, true)
	c.Redirect(http.StatusSeeOther, StepOnePath)
}

// Register handles POST /register and redirects to the login page.
func (h *AuthHandler) Register(c *gin.Context) {
	var req CredentialsRequest
	if !bindRequest(c, &req) {
		return
	}

	if _, err := h.auth.Register(c.Request.Context(), req.Username, req.Password); err != nil {
		switch {
		case errors.Is(err, services.ErrUsernameTaken):
			apierrors.Conflict(c, "Username already exists")
		case errors.Is(err, services.ErrInvalidRegistration):
			apierrors.BadRequest(c, "Username and password are required", nil)
		default:
			apierrors.InternalServerError(c, "Failed to register user", err)
		}
		return
	}

	c.Redirect(http.StatusSeeOther, middleware.LoginPath)
}

// Logout handles GET /logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.cookieSecure, true)
	c.Redirect(http.StatusSeeOther, middleware.LoginPath)
}

// bindRequest binds the body (form or JSON by content type) into req and
// writes the error response itself when binding fails.
func bindRequest(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBind(req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			apierrors.ValidationError(c, validationErrors)
			return false
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return false
	}
	return true
}
