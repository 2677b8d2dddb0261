package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/pdt-ict/portal/internal/platform/httpx"
	"github.com/pdt-ict/portal/internal/shared"
)

const forgotPasswordMessage = "If an account exists, a password reset email will be sent"

// HandlerParams groups Handler dependencies.
type HandlerParams struct {
	Logger   *slog.Logger
	Service  *Service
	Sessions *shared.SessionManager
	Tokens   *TokenService
	// CredentialLimiter throttles login and forgot-password. Optional.
	CredentialLimiter func(http.Handler) http.Handler
}

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger      *slog.Logger
	service     *Service
	sessions    *shared.SessionManager
	requireAuth func(http.Handler) http.Handler
	limiter     func(http.Handler) http.Handler
	validator   *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(p HandlerParams) *Handler {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limiter := p.CredentialLimiter
	if limiter == nil {
		limiter = func(next http.Handler) http.Handler { return next }
	}
	return &Handler{
		logger:      logger,
		service:     p.Service,
		sessions:    p.Sessions,
		requireAuth: RequireBearer(p.Tokens, logger),
		limiter:     limiter,
		validator:   newValidator(),
	}
}

// RequireAuth exposes the bearer middleware for other route groups.
func (h *Handler) RequireAuth() func(http.Handler) http.Handler {
	return h.requireAuth
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(SanitizeBody)
		r.Post("/register", h.handleRegister)
		r.With(h.limiter).Post("/login", h.handleLogin)
		r.Post("/refresh-token", h.handleRefresh)
		r.With(h.limiter).Post("/forgot-password", h.handleForgotPassword)
		r.Post("/reset-password", h.handleResetPassword)
	})
	r.Post("/logout", h.handleLogout)
	r.With(h.requireAuth).Get("/me", h.handleMe)
}

type registerRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,password_policy"`
	FirstName string `json:"firstName" validate:"max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	Token string `json:"token"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword" validate:"required,password_policy"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}
	sess, err := h.service.Register(r.Context(), RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.fail(w, r, "register", err)
		return
	}
	h.attachSession(r, sess.User.ID)
	httpx.Success(w, http.StatusCreated, sess, "")
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}
	sess, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, "login", err)
		return
	}
	h.attachSession(r, sess.User.ID)
	httpx.Success(w, http.StatusOK, sess, "")
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil && h.sessions != nil {
		h.sessions.Destroy(sess)
	}
	httpx.Success(w, http.StatusOK, nil, "Logged out successfully")
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	id, _ := shared.IdentityFromContext(r.Context())
	profile, err := h.service.CurrentUser(r.Context(), id.UserID)
	if err != nil {
		h.fail(w, r, "current user", err)
		return
	}
	httpx.Success(w, http.StatusOK, map[string]any{"user": profile}, "")
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !h.decode(w, r, &req) {
		return
	}
	token, err := h.service.RefreshToken(r.Context(), req.Token)
	if err != nil {
		h.fail(w, r, "refresh token", err)
		return
	}
	httpx.Success(w, http.StatusOK, map[string]string{"token": token}, "")
}

func (h *Handler) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}
	res, err := h.service.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		h.fail(w, r, "forgot password", err)
		return
	}
	var data any
	if res.ResetToken != "" {
		data = map[string]string{"resetToken": res.ResetToken}
	}
	httpx.Success(w, http.StatusOK, data, forgotPasswordMessage)
}

func (h *Handler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.service.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		h.fail(w, r, "reset password", err)
		return
	}
	httpx.Success(w, http.StatusOK, nil, "Password has been reset successfully")
}

func (h *Handler) attachSession(r *http.Request, userID string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.SetUser(userID)
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := h.validator.Struct(target); err != nil {
		httpx.Fail(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if httpx.StatusFor(err) == http.StatusInternalServerError {
		h.logger.Error(op, slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("password_policy", func(fl validator.FieldLevel) bool {
		return ValidatePassword(fl.Field().String()) == nil
	})
	return v
}

func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "Invalid request"
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "A valid email is required"
	case "password_policy":
		return PasswordPolicyMessage
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
