package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pettracker/app/domain"
	custommw "pettracker/app/rest/middleware"
)

// stubPetUsecase is a hand-rolled port.PetUsecase.
type stubPetUsecase struct {
	pets       []domain.Pet
	listErr    error
	created    *domain.Pet
	createErr  error
	listUserID string
	createUser string
}

func (s *stubPetUsecase) List(ctx context.Context, userID string) ([]domain.Pet, error) {
	s.listUserID = userID
	return s.pets, s.listErr
}

func (s *stubPetUsecase) Create(ctx context.Context, userID string, req domain.CreatePetRequest) (*domain.Pet, error) {
	s.createUser = userID
	if s.createErr != nil {
		return nil, s.createErr
	}
	if s.created != nil {
		return s.created, nil
	}
	return &domain.Pet{PetID: "assigned-id", UserID: userID, Name: req.Name}, nil
}

func (s *stubPetUsecase) UploadPhoto(ctx context.Context, userID, filename, contentType string, body io.Reader) (string, string, error) {
	return "uploads/" + userID + "/key/" + filename, "https://signed.example.com/photo", nil
}

func petContext(method, body, userID string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, "/items/pets", reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != "" {
		c.Set(custommw.ContextKeyUserID, userID)
	}
	return c, rec
}

func TestPetHandler_Create(t *testing.T) {
	usecase := &stubPetUsecase{}
	handler := NewPetHandler(usecase, slog.Default())

	c, rec := petContext(http.MethodPost, `{"name":"Rex","breed":"Labrador"}`, "user-1")
	require.NoError(t, handler.Create(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", usecase.createUser)

	var pet domain.Pet
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pet))

	// Server-assigned identifiers echoed back.
	assert.Equal(t, "assigned-id", pet.PetID)
	assert.Equal(t, "user-1", pet.UserID)
	assert.Equal(t, "Rex", pet.Name)
}

func TestPetHandler_Create_MissingName(t *testing.T) {
	usecase := &stubPetUsecase{createErr: domain.ErrPetNameRequired}
	handler := NewPetHandler(usecase, slog.Default())

	c, rec := petContext(http.MethodPost, `{"breed":"Labrador"}`, "user-1")
	require.NoError(t, handler.Create(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"You must specify a pet name"}`, rec.Body.String())
}

func TestPetHandler_Create_GuestFallsBackToUnauth(t *testing.T) {
	usecase := &stubPetUsecase{}
	handler := NewPetHandler(usecase, slog.Default())

	c, rec := petContext(http.MethodPost, `{"name":"Stray"}`, "")
	require.NoError(t, handler.Create(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.UnauthenticatedIdentity, usecase.createUser)
}

func TestPetHandler_List(t *testing.T) {
	usecase := &stubPetUsecase{
		pets: []domain.Pet{
			{PetID: "p1", UserID: "user-1", Name: "Rex"},
			{PetID: "p2", UserID: "user-1", Name: "Whiskers"},
		},
	}
	handler := NewPetHandler(usecase, slog.Default())

	c, rec := petContext(http.MethodGet, "", "user-1")
	require.NoError(t, handler.List(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", usecase.listUserID)

	var pets []domain.Pet
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pets))
	assert.Len(t, pets, 2)
}

func TestPetHandler_List_Error(t *testing.T) {
	usecase := &stubPetUsecase{listErr: errors.New("db down")}
	handler := NewPetHandler(usecase, slog.Default())

	c, rec := petContext(http.MethodGet, "", "user-1")
	require.NoError(t, handler.List(c))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
