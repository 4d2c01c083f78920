package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"pettracker/app/domain"
	"pettracker/app/port"
	custommw "pettracker/app/rest/middleware"
)

// PetHandler handles pet HTTP requests
type PetHandler struct {
	petUsecase port.PetUsecase
	logger     *slog.Logger
}

// NewPetHandler creates a new pet handler
func NewPetHandler(petUsecase port.PetUsecase, logger *slog.Logger) *PetHandler {
	return &PetHandler{
		petUsecase: petUsecase,
		logger:     logger,
	}
}

// PhotoResponse reports where an uploaded photo landed
type PhotoResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// List returns the caller's pets
// @Summary List pets
// @Description List the pets owned by the caller identity
// @Tags pets
// @Produce json
// @Success 200 {array} domain.Pet
// @Failure 500 {object} ErrorResponse
// @Router /items/pets [get]
func (h *PetHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	userID := custommw.UserID(c)

	pets, err := h.petUsecase.List(ctx, userID)
	if err != nil {
		h.logger.Error("failed to list pets",
			"user_id", userID,
			"error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to load pets"})
	}

	return c.JSON(http.StatusOK, pets)
}

// Create registers a new pet for the caller
// @Summary Create pet
// @Description Create a pet; the server assigns petId and userId
// @Tags pets
// @Accept json
// @Produce json
// @Success 200 {object} domain.Pet
// @Failure 400 {object} ErrorResponse
// @Router /items/pets [post]
func (h *PetHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	userID := custommw.UserID(c)

	var req domain.CreatePetRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
	}

	pet, err := h.petUsecase.Create(ctx, userID, req)
	if err != nil {
		if errors.Is(err, domain.ErrPetNameRequired) {
			return c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "You must specify a pet name",
			})
		}
		h.logger.Error("failed to create pet",
			"user_id", userID,
			"error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to create pet"})
	}

	h.logger.Info("pet created",
		"pet_id", pet.PetID,
		"user_id", pet.UserID)

	return c.JSON(http.StatusOK, pet)
}

// UploadPhoto stores a pet photo and returns its key and a signed URL
// @Summary Upload pet photo
// @Tags pets
// @Accept multipart/form-data
// @Produce json
// @Success 201 {object} PhotoResponse
// @Failure 400 {object} ErrorResponse
// @Router /items/pets/photos [post]
func (h *PetHandler) UploadPhoto(c echo.Context) error {
	ctx := c.Request().Context()
	userID := custommw.UserID(c)

	file, err := c.FormFile("photo")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "You must attach a photo"})
	}

	src, err := file.Open()
	if err != nil {
		h.logger.Error("failed to open uploaded photo",
			"user_id", userID,
			"error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to store photo"})
	}
	defer src.Close()

	contentType := file.Header.Get("Content-Type")
	key, url, err := h.petUsecase.UploadPhoto(ctx, userID, file.Filename, contentType, src)
	if err != nil {
		h.logger.Error("failed to store photo",
			"user_id", userID,
			"filename", file.Filename,
			"error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to store photo"})
	}

	return c.JSON(http.StatusCreated, PhotoResponse{Key: key, URL: url})
}
