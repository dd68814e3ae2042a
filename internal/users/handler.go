package users

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	sharedauth "resume-feedback/internal/shared/auth"
	"resume-feedback/internal/shared/server/middleware"
	"resume-feedback/internal/shared/server/respond"
	"resume-feedback/internal/shared/telemetry"
)

type Handler struct {
	Svc          *Service
	Tokens       *sharedauth.Tokens
	SecureCookie bool
}

func NewHandler(svc *Service, tokens *sharedauth.Tokens, secureCookie bool) *Handler {
	return &Handler{Svc: svc, Tokens: tokens, SecureCookie: secureCookie}
}

// RegisterPublicRoutes attaches the routes that need no session.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/signup", h.signUp)
	rg.POST("/auth/signin", h.signIn)
}

// RegisterRoutes attaches the session-protected routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.me)
	rg.POST("/auth/signout", h.signOut)
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type userResponse struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	PictureURL string `json:"pictureUrl,omitempty"`
	Provider   string `json:"provider"`
}

func (h *Handler) signUp(c *gin.Context) {
	var req SignUpInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	user, err := h.Svc.SignUp(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, ErrEmailTaken):
			respond.Error(c, http.StatusConflict, "email_taken", "email already registered", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create account", nil)
		}
		return
	}
	h.startSession(c, http.StatusCreated, user)
}

func (h *Handler) signIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	user, err := h.Svc.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			respond.Error(c, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to sign in", nil)
		return
	}
	h.startSession(c, http.StatusOK, user)
}

func (h *Handler) signOut(c *gin.Context) {
	h.setCookie(c, "", -1)
	telemetry.Info("auth.signout", map[string]any{"user_id": middleware.UserIDFromContext(c)})
	respond.OK(c, gin.H{"signedOut": true})
}

func (h *Handler) me(c *gin.Context) {
	if h.Svc == nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "service unavailable", nil)
		return
	}
	userID := middleware.UserIDFromContext(c)
	user, err := h.Svc.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "user not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load user", nil)
		return
	}
	respond.OK(c, toUserResponse(user))
}

func (h *Handler) startSession(c *gin.Context, status int, user User) {
	token, err := h.Tokens.Sign(sharedauth.NewClaims(user.ID, user.Email, user.Name, user.PictureURL))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to issue token", nil)
		return
	}
	h.setCookie(c, token, int(h.Tokens.TTL().Seconds()))
	respond.JSON(c, status, sessionResponse{Token: token, User: toUserResponse(user)})
}

func (h *Handler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, value, maxAge, "/", "", h.SecureCookie, true)
}

func toUserResponse(user User) userResponse {
	return userResponse{
		ID:         user.ID,
		Email:      user.Email,
		Name:       user.Name,
		PictureURL: user.PictureURL,
		Provider:   user.Provider,
	}
}
