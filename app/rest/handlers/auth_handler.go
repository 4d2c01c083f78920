package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"pettracker/app/domain"
	"pettracker/app/port"
	"pettracker/app/utils/validator"
)

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	sessionUsecase port.SessionUsecase
	validator      *validator.Validator
	logger         *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(sessionUsecase port.SessionUsecase, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		sessionUsecase: sessionUsecase,
		validator:      validator.New(),
		logger:         logger,
	}
}

// ErrorResponse is the error body returned by every endpoint.
type ErrorResponse struct {
	Message string `json:"message"`
}

// SignInRequest carries the credentials for a password sign-in
type SignInRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SignInResponse reports the session state after a sign-in step
type SignInResponse struct {
	State       domain.AuthState    `json:"state"`
	MFARequired bool                `json:"mfaRequired"`
	Delivery    domain.CodeDelivery `json:"delivery,omitempty"`
}

// MFARequest carries the one-time code answering a pending challenge
type MFARequest struct {
	Code string `json:"code"`
}

// SignUpResponse reports whether the new registration needs confirmation
type SignUpResponse struct {
	UserConfirmed bool                `json:"userConfirmed"`
	Delivery      domain.CodeDelivery `json:"delivery,omitempty"`
}

// ConfirmRequest carries the emailed or texted confirmation code
type ConfirmRequest struct {
	Username string `json:"username" validate:"required"`
	Code     string `json:"code" validate:"required"`
}

// UsernameRequest names the account for resend and forgot-password flows
type UsernameRequest struct {
	Username string `json:"username" validate:"required"`
}

// ResetPasswordRequest completes a forgot-password flow
type ResetPasswordRequest struct {
	Username    string `json:"username" validate:"required"`
	Code        string `json:"code" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

// StatusResponse reports the current session state
type StatusResponse struct {
	State    domain.AuthState `json:"state"`
	SignedIn bool             `json:"signedIn"`
}

// SignIn authenticates with username and password
// @Summary Sign in
// @Description Authenticate with username and password, possibly starting an MFA challenge
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} SignInResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/signin [post]
func (h *AuthHandler) SignIn(c echo.Context) error {
	ctx := c.Request().Context()

	var req SignInRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
	}
	if err := h.validator.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: domain.UserMessage(domain.ErrCodeInvalidCredentials),
		})
	}

	result, err := h.sessionUsecase.SignIn(ctx, req.Username, req.Password)
	if err != nil {
		return h.authErrorResponse(c, "sign in failed", err)
	}

	h.logger.Info("sign in step completed",
		"state", result.State,
		"mfa_required", result.MFARequired)

	return c.JSON(http.StatusOK, SignInResponse{
		State:       result.State,
		MFARequired: result.MFARequired,
		Delivery:    result.Delivery,
	})
}

// SubmitMFACode answers the pending multi-factor challenge
// @Summary Submit MFA code
// @Description Answer the pending multi-factor challenge with a one-time code
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} SignInResponse
// @Failure 401 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /auth/mfa [post]
func (h *AuthHandler) SubmitMFACode(c echo.Context) error {
	ctx := c.Request().Context()

	var req MFARequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
	}

	result, err := h.sessionUsecase.SubmitMFACode(ctx, req.Code)
	if err != nil {
		if errors.Is(err, domain.ErrNoPendingChallenge) {
			return c.JSON(http.StatusConflict, ErrorResponse{Message: "no verification pending"})
		}
		return h.authErrorResponse(c, "mfa verification failed", err)
	}

	return c.JSON(http.StatusOK, SignInResponse{
		State:       result.State,
		MFARequired: result.MFARequired,
		Delivery:    result.Delivery,
	})
}

// SignUp registers a new account
// @Summary Sign up
// @Description Register a new account; a confirmation code may be sent
// @Tags auth
// @Accept json
// @Produce json
// @Success 201 {object} SignUpResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /auth/signup [post]
func (h *AuthHandler) SignUp(c echo.Context) error {
	ctx := c.Request().Context()

	var req domain.SignUpRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
	}
	if err := h.validator.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error()})
	}

	result, err := h.sessionUsecase.SignUp(ctx, req)
	if err != nil {
		return h.authErrorResponse(c, "sign up failed", err)
	}

	h.logger.Info("user registered",
		"username", req.Username,
		"confirmed", result.UserConfirmed)

	return c.JSON(http.StatusCreated, SignUpResponse{
		UserConfirmed: result.UserConfirmed,
		Delivery:      result.Delivery,
	})
}

// ConfirmRegistration confirms a registration with the delivered code
// @Summary Confirm registration
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 400 {object} ErrorResponse
// @Router /auth/confirm [post]
func (h *AuthHandler) ConfirmRegistration(c echo.Context) error {
	ctx := c.Request().Context()

	var req ConfirmRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
	}
	if err := h.validator.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error()})
	}

	if err := h.sessionUsecase.ConfirmRegistration(ctx, req.Username, req.Code); err != nil {
		h.logger.Error("registration confirmation failed",
			"username", req.Username,
			"error", err)
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "confirmed"})
}

// ResendConfirmationCode resends the registration confirmation code
// @Summary Resend confirmation code
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 400 {object} ErrorResponse
// @Router /auth/resend [post]
func (h *AuthHandler) ResendConfirmationCode(c echo.Context) error {
	ctx := c.Request().Context()

	var req UsernameRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
	}
	if err := h.validator.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error()})
	}

	if err := h.sessionUsecase.ResendConfirmationCode(ctx, req.Username); err != nil {
		h.logger.Error("resend confirmation failed",
			"username", req.Username,
			"error", err)
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "sent"})
}

// ForgotPassword starts a password reset flow
// @Summary Forgot password
// @Description Send a password reset code to the account's verified contact
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} SignUpResponse
// @Failure 400 {object} ErrorResponse
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	ctx := c.Request().Context()

	var req UsernameRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
	}
	if err := h.validator.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: domain.UserMessage(domain.ErrCodeUnknownUser),
		})
	}

	delivery, err := h.sessionUsecase.ForgotPassword(ctx, req.Username)
	if err != nil {
		return h.authErrorResponse(c, "forgot password failed", err)
	}

	resp := SignUpResponse{}
	if delivery != nil {
		resp.Delivery = *delivery
	}
	return c.JSON(http.StatusOK, resp)
}

// ResetPassword completes a password reset with the delivered code
// @Summary Reset password
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 400 {object} ErrorResponse
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	ctx := c.Request().Context()

	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
	}
	if err := h.validator.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: domain.UserMessage(domain.ErrCodeEmptyCode),
		})
	}

	if err := h.sessionUsecase.ResetPassword(ctx, req.Username, req.Code, req.NewPassword); err != nil {
		return h.authErrorResponse(c, "password reset failed", err)
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "password_reset"})
}

// SignOut ends the current session
// @Summary Sign out
// @Description End the current session; safe to call when already signed out
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string
// @Router /auth/signout [post]
func (h *AuthHandler) SignOut(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.sessionUsecase.SignOut(ctx); err != nil {
		h.logger.Error("sign out failed", "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "There was a problem"})
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "signed_out"})
}

// Status reports the current session state
// @Summary Session status
// @Tags auth
// @Produce json
// @Success 200 {object} StatusResponse
// @Router /auth/status [get]
func (h *AuthHandler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, StatusResponse{
		State:    h.sessionUsecase.State(),
		SignedIn: h.sessionUsecase.IsSignedIn(),
	})
}

// authErrorResponse maps a classified provider failure to an HTTP status
// and its user-facing message.
func (h *AuthHandler) authErrorResponse(c echo.Context, logMsg string, err error) error {
	authErr := domain.AsAuthError(err)

	h.logger.Error(logMsg,
		"code", authErr.Code,
		"error", err)

	return c.JSON(statusForCode(authErr.Code), ErrorResponse{Message: authErr.Message})
}

func statusForCode(code domain.AuthErrorCode) int {
	switch code {
	case domain.ErrCodeInvalidCredentials,
		domain.ErrCodeCodeMismatch,
		domain.ErrCodePasswordResetRequired,
		domain.ErrCodeUserNotConfirmed:
		return http.StatusUnauthorized
	case domain.ErrCodeEmptyCode,
		domain.ErrCodeInvalidPassword,
		domain.ErrCodeWeakPassword,
		domain.ErrCodeUnknownUser,
		domain.ErrCodeNoVerifiedContact:
		return http.StatusBadRequest
	case domain.ErrCodeUsernameExists:
		return http.StatusConflict
	case domain.ErrCodeAttemptLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
