// Package handler exposes the HTTP surface of the warehouse service: CRUD
// for the logistics entities and the validation/acceptance endpoints backed
// by the consistency engine.
package handler

import (
	"errors"
	"net/http"

	"github.com/DmitriyMikhalev/warehouses/internal/engine"
)

var svc *engine.Service

// Init wires the consistency engine into the handler package
func Init(service *engine.Service) {
	svc = service
}

// Engine returns the wired consistency engine
func Engine() *engine.Service {
	return svc
}

// engineErrorStatus maps engine errors to HTTP status codes. Validation
// errors are client errors; integrity errors are server faults and must not
// be downgraded.
func engineErrorStatus(err error) int {
	var (
		cnfErr *engine.ConflictError
		dupErr *engine.DuplicateLineError
		intErr *engine.IntegrityError
	)

	switch {
	case errors.Is(err, engine.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &cnfErr), errors.As(err, &dupErr):
		return http.StatusConflict
	case errors.As(err, &intErr):
		return http.StatusInternalServerError
	case engine.IsValidation(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// validationReason labels a rejected proposal for metrics
func validationReason(err error) string {
	var (
		capErr *engine.CapacityError
		stkErr *engine.StockError
		cnfErr *engine.ConflictError
		dupErr *engine.DuplicateLineError
		prpErr *engine.ProposalError
	)

	switch {
	case errors.As(err, &capErr):
		return "capacity"
	case errors.As(err, &stkErr):
		return "stock"
	case errors.As(err, &cnfErr):
		return "conflict"
	case errors.As(err, &dupErr):
		return "duplicate"
	case errors.As(err, &prpErr):
		return "window"
	default:
		return "internal"
	}
}
