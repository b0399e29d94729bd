package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/eldview/eldview/internal/api/models"
	"github.com/eldview/eldview/internal/api/response"
	"github.com/eldview/eldview/internal/logbook"
)

// FleetService manages the drivers and equipment named on daily logs.
// *logbook.Service implements it.
type FleetService interface {
	CreateDriver(ctx context.Context, input logbook.DriverInput) (*logbook.Driver, error)
	GetDriver(ctx context.Context, id int64) (*logbook.Driver, error)
	ListDrivers(ctx context.Context) ([]*logbook.Driver, error)
	CreateTruck(ctx context.Context, input logbook.TruckInput) (*logbook.Truck, error)
	GetTruck(ctx context.Context, id int64) (*logbook.Truck, error)
	ListTrucks(ctx context.Context) ([]*logbook.Truck, error)
	CreateTrailer(ctx context.Context, input logbook.TrailerInput) (*logbook.Trailer, error)
	GetTrailer(ctx context.Context, id int64) (*logbook.Trailer, error)
	ListTrailers(ctx context.Context) ([]*logbook.Trailer, error)
}

// FleetHandler handles drivers, trucks and trailers.
type FleetHandler struct {
	svc    FleetService
	logger zerolog.Logger
}

// NewFleetHandler creates a new FleetHandler.
func NewFleetHandler(svc FleetService, logger zerolog.Logger) *FleetHandler {
	return &FleetHandler{svc: svc, logger: logger}
}

// ListDrivers handles GET /v1/drivers.
func (h *FleetHandler) ListDrivers(w http.ResponseWriter, r *http.Request) {
	drivers, err := h.svc.ListDrivers(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, models.DriverList{Items: convertAll(drivers, toDriver)})
}

// CreateDriver handles POST /v1/drivers.
func (h *FleetHandler) CreateDriver(w http.ResponseWriter, r *http.Request) {
	var input models.DriverCreateRequest
	if err := decodeJSON(w, r, &input); err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}

	d, err := h.svc.CreateDriver(r.Context(), logbook.DriverInput{
		FirstName:     input.FirstName,
		LastName:      input.LastName,
		LicenseNumber: input.LicenseNumber,
		Phone:         input.Phone,
		Address:       input.Address,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.Created(w, r, fmt.Sprintf("/v1/drivers/%d", d.ID), toDriver(d))
}

// GetDriver handles GET /v1/drivers/{driverId}.
func (h *FleetHandler) GetDriver(w http.ResponseWriter, r *http.Request) {
	id, ferr := pathID(r, "driverId")
	if ferr != nil {
		response.BadRequest(w, r, "invalid driver id", []models.FieldError{*ferr})
		return
	}

	d, err := h.svc.GetDriver(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, toDriver(d))
}

// ListTrucks handles GET /v1/trucks.
func (h *FleetHandler) ListTrucks(w http.ResponseWriter, r *http.Request) {
	trucks, err := h.svc.ListTrucks(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, models.TruckList{Items: convertAll(trucks, toTruck)})
}

// CreateTruck handles POST /v1/trucks.
func (h *FleetHandler) CreateTruck(w http.ResponseWriter, r *http.Request) {
	var input models.TruckCreateRequest
	if err := decodeJSON(w, r, &input); err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}

	t, err := h.svc.CreateTruck(r.Context(), logbook.TruckInput{
		TruckNumber:  input.TruckNumber,
		MakeModel:    input.MakeModel,
		Year:         input.Year,
		LicensePlate: input.LicensePlate,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.Created(w, r, fmt.Sprintf("/v1/trucks/%d", t.ID), toTruck(t))
}

// GetTruck handles GET /v1/trucks/{truckId}.
func (h *FleetHandler) GetTruck(w http.ResponseWriter, r *http.Request) {
	id, ferr := pathID(r, "truckId")
	if ferr != nil {
		response.BadRequest(w, r, "invalid truck id", []models.FieldError{*ferr})
		return
	}

	t, err := h.svc.GetTruck(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, toTruck(t))
}

// ListTrailers handles GET /v1/trailers.
func (h *FleetHandler) ListTrailers(w http.ResponseWriter, r *http.Request) {
	trailers, err := h.svc.ListTrailers(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, models.TrailerList{Items: convertAll(trailers, toTrailer)})
}

// CreateTrailer handles POST /v1/trailers.
func (h *FleetHandler) CreateTrailer(w http.ResponseWriter, r *http.Request) {
	var input models.TrailerCreateRequest
	if err := decodeJSON(w, r, &input); err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}

	t, err := h.svc.CreateTrailer(r.Context(), logbook.TrailerInput{
		TrailerNumber: input.TrailerNumber,
		Type:          logbook.TrailerType(input.TrailerType),
		Capacity:      input.Capacity,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.Created(w, r, fmt.Sprintf("/v1/trailers/%d", t.ID), toTrailer(t))
}

// GetTrailer handles GET /v1/trailers/{trailerId}.
func (h *FleetHandler) GetTrailer(w http.ResponseWriter, r *http.Request) {
	id, ferr := pathID(r, "trailerId")
	if ferr != nil {
		response.BadRequest(w, r, "invalid trailer id", []models.FieldError{*ferr})
		return
	}

	t, err := h.svc.GetTrailer(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, toTrailer(t))
}
