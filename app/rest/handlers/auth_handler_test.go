package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pettracker/app/domain"
)

// stubSessionUsecase is a hand-rolled port.SessionUsecase.
type stubSessionUsecase struct {
	signInResult *domain.SignInResult
	signInErr    error

	mfaResult *domain.SignInResult
	mfaErr    error

	signUpResult *domain.SignUpResult
	signUpErr    error

	confirmErr error
	resendErr  error

	forgotDelivery *domain.CodeDelivery
	forgotErr      error
	resetErr       error

	signOutErr   error
	signOutCalls int

	signedIn bool
	state    domain.AuthState
}

func (s *stubSessionUsecase) Init(ctx context.Context) {}

func (s *stubSessionUsecase) SignIn(ctx context.Context, username, password string) (*domain.SignInResult, error) {
	return s.signInResult, s.signInErr
}

func (s *stubSessionUsecase) SubmitMFACode(ctx context.Context, code string) (*domain.SignInResult, error) {
	return s.mfaResult, s.mfaErr
}

func (s *stubSessionUsecase) SignUp(ctx context.Context, req domain.SignUpRequest) (*domain.SignUpResult, error) {
	return s.signUpResult, s.signUpErr
}

func (s *stubSessionUsecase) ConfirmRegistration(ctx context.Context, username, code string) error {
	return s.confirmErr
}

func (s *stubSessionUsecase) ResendConfirmationCode(ctx context.Context, username string) error {
	return s.resendErr
}

func (s *stubSessionUsecase) ForgotPassword(ctx context.Context, username string) (*domain.CodeDelivery, error) {
	return s.forgotDelivery, s.forgotErr
}

func (s *stubSessionUsecase) ResetPassword(ctx context.Context, username, code, newPassword string) error {
	return s.resetErr
}

func (s *stubSessionUsecase) SignOut(ctx context.Context) error {
	s.signOutCalls++
	return s.signOutErr
}

func (s *stubSessionUsecase) IsSignedIn() bool {
	return s.signedIn
}

func (s *stubSessionUsecase) State() domain.AuthState {
	return s.state
}

func authContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_SignIn(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		usecase    *stubSessionUsecase
		wantStatus int
		wantBody   string
	}{
		{
			name: "authenticated",
			body: `{"username":"alice","password":"hunter2!"}`,
			usecase: &stubSessionUsecase{
				signInResult: &domain.SignInResult{State: domain.StateAuthenticated},
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "mfa pending",
			body: `{"username":"alice","password":"hunter2!"}`,
			usecase: &stubSessionUsecase{
				signInResult: &domain.SignInResult{
					State:       domain.StateMFAPending,
					MFARequired: true,
					Delivery:    domain.CodeDelivery{Destination: "+*******0123", Medium: "SMS"},
				},
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "invalid credentials",
			body: `{"username":"alice","password":"wrong"}`,
			usecase: &stubSessionUsecase{
				signInErr: domain.NewAuthError(domain.ErrCodeInvalidCredentials, errors.New("denied")),
			},
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"message":"Please enter valid username and Password."}`,
		},
		{
			name:       "blank credentials rejected before the provider",
			body:       `{"username":"","password":""}`,
			usecase:    &stubSessionUsecase{},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"message":"Please enter valid username and Password."}`,
		},
		{
			name: "attempt limit",
			body: `{"username":"alice","password":"hunter2!"}`,
			usecase: &stubSessionUsecase{
				signInErr: domain.NewAuthError(domain.ErrCodeAttemptLimit, errors.New("throttled")),
			},
			wantStatus: http.StatusTooManyRequests,
			wantBody:   `{"message":"Attempt limit exceeded, please try again later"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewAuthHandler(tt.usecase, slog.Default())
			c, rec := authContext(http.MethodPost, "/auth/signin", tt.body)

			require.NoError(t, handler.SignIn(c))
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestAuthHandler_SignIn_MFAResponseShape(t *testing.T) {
	usecase := &stubSessionUsecase{
		signInResult: &domain.SignInResult{
			State:       domain.StateMFAPending,
			MFARequired: true,
			Delivery:    domain.CodeDelivery{Destination: "+*******0123", Medium: "SMS"},
		},
	}
	handler := NewAuthHandler(usecase, slog.Default())
	c, rec := authContext(http.MethodPost, "/auth/signin", `{"username":"alice","password":"pw"}`)

	require.NoError(t, handler.SignIn(c))

	var resp SignInResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.StateMFAPending, resp.State)
	assert.True(t, resp.MFARequired)
	assert.Equal(t, "+*******0123", resp.Delivery.Destination)
}

func TestAuthHandler_SubmitMFACode(t *testing.T) {
	t.Run("wrong code", func(t *testing.T) {
		usecase := &stubSessionUsecase{
			mfaErr: domain.NewAuthError(domain.ErrCodeCodeMismatch, errors.New("bad code")),
		}
		handler := NewAuthHandler(usecase, slog.Default())
		c, rec := authContext(http.MethodPost, "/auth/mfa", `{"code":"000000"}`)

		require.NoError(t, handler.SubmitMFACode(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"message":"Invalid Verification Code"}`, rec.Body.String())
	})

	t.Run("no pending challenge", func(t *testing.T) {
		usecase := &stubSessionUsecase{mfaErr: domain.ErrNoPendingChallenge}
		handler := NewAuthHandler(usecase, slog.Default())
		c, rec := authContext(http.MethodPost, "/auth/mfa", `{"code":"123456"}`)

		require.NoError(t, handler.SubmitMFACode(c))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("accepted", func(t *testing.T) {
		usecase := &stubSessionUsecase{
			mfaResult: &domain.SignInResult{State: domain.StateAuthenticated},
		}
		handler := NewAuthHandler(usecase, slog.Default())
		c, rec := authContext(http.MethodPost, "/auth/mfa", `{"code":"123456"}`)

		require.NoError(t, handler.SubmitMFACode(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestAuthHandler_SignUp(t *testing.T) {
	t.Run("registered pending confirmation", func(t *testing.T) {
		usecase := &stubSessionUsecase{
			signUpResult: &domain.SignUpResult{
				UserConfirmed: false,
				Delivery:      domain.CodeDelivery{Destination: "a***@example.com", Medium: "EMAIL"},
			},
		}
		handler := NewAuthHandler(usecase, slog.Default())
		c, rec := authContext(http.MethodPost, "/auth/signup",
			`{"username":"alice","password":"Str0ng!pass","email":"alice@example.com"}`)

		require.NoError(t, handler.SignUp(c))
		assert.Equal(t, http.StatusCreated, rec.Code)

		var resp SignUpResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.UserConfirmed)
		assert.Equal(t, "a***@example.com", resp.Delivery.Destination)
	})

	t.Run("duplicate username", func(t *testing.T) {
		usecase := &stubSessionUsecase{
			signUpErr: domain.NewAuthError(domain.ErrCodeUsernameExists, errors.New("exists")),
		}
		handler := NewAuthHandler(usecase, slog.Default())
		c, rec := authContext(http.MethodPost, "/auth/signup",
			`{"username":"alice","password":"Str0ng!pass"}`)

		require.NoError(t, handler.SignUp(c))
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.JSONEq(t, `{"message":"User already exists"}`, rec.Body.String())
	})
}

func TestAuthHandler_ForgotPassword(t *testing.T) {
	t.Run("code sent", func(t *testing.T) {
		usecase := &stubSessionUsecase{
			forgotDelivery: &domain.CodeDelivery{Destination: "a***@example.com", Medium: "EMAIL"},
		}
		handler := NewAuthHandler(usecase, slog.Default())
		c, rec := authContext(http.MethodPost, "/auth/forgot-password", `{"username":"alice"}`)

		require.NoError(t, handler.ForgotPassword(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("no verified contact", func(t *testing.T) {
		usecase := &stubSessionUsecase{
			forgotErr: domain.NewAuthError(domain.ErrCodeNoVerifiedContact, errors.New("nothing verified")),
		}
		handler := NewAuthHandler(usecase, slog.Default())
		c, rec := authContext(http.MethodPost, "/auth/forgot-password", `{"username":"alice"}`)

		require.NoError(t, handler.ForgotPassword(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t,
			`{"message":"Cannot reset password for the user as there is no registered/verified email or phone number"}`,
			rec.Body.String())
	})
}

func TestAuthHandler_SignOut(t *testing.T) {
	usecase := &stubSessionUsecase{}
	handler := NewAuthHandler(usecase, slog.Default())
	c, rec := authContext(http.MethodPost, "/auth/signout", "")

	require.NoError(t, handler.SignOut(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, usecase.signOutCalls)
}

func TestAuthHandler_Status(t *testing.T) {
	usecase := &stubSessionUsecase{state: domain.StateAuthenticated, signedIn: true}
	handler := NewAuthHandler(usecase, slog.Default())
	c, rec := authContext(http.MethodGet, "/auth/status", "")

	require.NoError(t, handler.Status(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.StateAuthenticated, resp.State)
	assert.True(t, resp.SignedIn)
}
