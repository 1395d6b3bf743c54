package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/flight-booking/internal/model"
	"github.com/iliyamo/flight-booking/internal/repository"
	"github.com/iliyamo/flight-booking/internal/service"
	"github.com/iliyamo/flight-booking/internal/validation"
)

// CatalogueStore writes flights and journeys.
type CatalogueStore interface {
	Create(ctx context.Context, f *model.Flight) error
	GetByID(ctx context.Context, id string) (model.Flight, error)
	CreateJourney(ctx context.Context, j *model.Journey) error
}

type FareRuleCreator interface {
	CreateRule(ctx context.Context, rule *model.FareRule) error
}

// AdminHandler maintains the flight catalogue.  Every body is checked
// against its JSON schema before it is decoded.
type AdminHandler struct {
	Catalogue CatalogueStore
	Fares     FareRuleCreator

	flightSchema  *validation.Validator
	journeySchema *validation.Validator
	fareSchema    *validation.Validator
}

func NewAdminHandler(cat CatalogueStore, fares FareRuleCreator) *AdminHandler {
	return &AdminHandler{
		Catalogue:     cat,
		Fares:         fares,
		flightSchema:  validation.MustLoad(validation.Flight),
		journeySchema: validation.MustLoad(validation.Journey),
		fareSchema:    validation.MustLoad(validation.FareRule),
	}
}

// bindValid reads the body, validates it against v and decodes it into dst.
// On failure the 400 response has already been written and ok is false.
func bindValid(c echo.Context, v *validation.Validator, dst any) (ok bool, err error) {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodyBytes))
	if err != nil {
		return false, c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	if errs := v.Validate(body); len(errs) > 0 {
		return false, c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid or missing fields", "errors": errs})
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return false, c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	return true, nil
}

// CreateFlight handles POST /v1/admin/flights.
func (h *AdminHandler) CreateFlight(c echo.Context) error {
	var f model.Flight
	if ok, err := bindValid(c, h.flightSchema, &f); !ok {
		return err
	}
	f.ID = ""

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Catalogue.Create(ctx, &f); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"message": "Flight number already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to create flight", "error": err.Error()})
	}
	return c.JSON(http.StatusCreated, f)
}

// CreateJourney handles POST /v1/admin/journeys.  The flight must exist.
func (h *AdminHandler) CreateJourney(c echo.Context) error {
	var j model.Journey
	if ok, err := bindValid(c, h.journeySchema, &j); !ok {
		return err
	}
	j.ID, j.Flight = "", nil

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Catalogue.GetByID(ctx, j.FlightID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Flight not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to load flight", "error": err.Error()})
	}
	if err := h.Catalogue.CreateJourney(ctx, &j); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"message": "Journey already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to create journey", "error": err.Error()})
	}
	return c.JSON(http.StatusCreated, j)
}

// CreateFareRule handles POST /v1/admin/fare-rules.
func (h *AdminHandler) CreateFareRule(c echo.Context) error {
	var r model.FareRule
	if ok, err := bindValid(c, h.fareSchema, &r); !ok {
		return err
	}
	r.ID = ""

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	err := h.Fares.CreateRule(ctx, &r)
	switch {
	case err == nil:
		return c.JSON(http.StatusCreated, r)
	case errors.Is(err, service.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid or missing fields"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"message": "Fare rule already exists"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to create fare rule", "error": err.Error()})
}
