package patient

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/cliniq/cliniq/internal/platform/search"
	"github.com/cliniq/cliniq/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/patients", h.ListPatients)
	api.GET("/patients/:id", h.GetPatient)
	api.POST("/patients", h.CreatePatient)
	api.PUT("/patients/:id", h.UpdatePatient)
	api.DELETE("/patients/:id", h.DeletePatient)
	api.GET("/patients/:id/care-records", h.ListCareRecords)
	api.GET("/patients/:id/enrollments", h.ListEnrollments)
}

// CreateRequest is the submit payload: the draft plus the care selections
// made in the same form.
type CreateRequest struct {
	Draft
	Selections []CareSelection `json:"selections"`
}

func httpError(err error) error {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]interface{}{
			"message": "validation failed",
			"fields":  verr.Fields,
		})
	}
	var perr *PersistenceError
	if errors.As(err, &perr) {
		return echo.NewHTTPError(http.StatusBadGateway, perr.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func (h *Handler) CreatePatient(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.CreatePatient(c.Request().Context(), req.Draft, req.Selections)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, ok := h.svc.GetPatient(id)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}

	resp := struct {
		Patient
		Age              int  `json:"age"`
		AllergyAlert     bool `json:"allergy_alert"`
		HasEmergencyInfo bool `json:"has_emergency_contact"`
		HasInsuranceInfo bool `json:"has_insurance_info"`
	}{
		Patient:          p,
		Age:              p.Age(time.Now()),
		AllergyAlert:     p.HasAllergyAlert(),
		HasEmergencyInfo: p.HasEmergencyContact(),
		HasInsuranceInfo: p.HasInsuranceInfo(),
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) ListPatients(c echo.Context) error {
	pg := pagination.FromContext(c)
	params := search.ExtractParams(c)

	// Unfiltered listings come straight from the snapshot.
	if len(params) == 0 {
		patients := h.svc.ListPatients()
		total := len(patients)
		start := pg.Offset
		if start > total {
			start = total
		}
		end := start + pg.Limit
		if end > total {
			end = total
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(patients[start:end], total, pg.Limit, pg.Offset))
	}

	items, total, err := h.svc.SearchPatients(c.Request().Context(), params, c.QueryParam("sort"), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var draft Draft
	if err := c.Bind(&draft); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.UpdatePatient(c.Request().Context(), id, draft)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeletePatient(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListCareRecords(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return c.JSON(http.StatusOK, h.svc.CareRecordsForPatient(id))
}

func (h *Handler) ListEnrollments(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return c.JSON(http.StatusOK, h.svc.EnrollmentsForPatient(id))
}
