package report

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/radassist/radassist/internal/platform/apperr"
	"github.com/radassist/radassist/internal/platform/auth"
	"github.com/radassist/radassist/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	clinician := auth.RequireRole(auth.RoleDoctor)

	api.GET("/reports", h.ListReports)
	api.GET("/reports/:id", h.GetReport)
	api.POST("/reports", h.GenerateReport, clinician)
	api.GET("/reports/pending", h.ListPendingReports, clinician)
	api.PUT("/reports/:id/validate", h.ValidateReport, clinician)
	api.POST("/reports/suggest-medicines", h.SuggestMedicines, clinician)
}

func (h *Handler) GenerateReport(c echo.Context) error {
	var in GenerateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p, _ := auth.PrincipalFromContext(c.Request().Context())
	rp, err := h.svc.Generate(c.Request().Context(), p, in)
	if err != nil {
		return echo.NewHTTPError(apperr.StatusCode(err), err.Error())
	}
	return c.JSON(http.StatusCreated, rp)
}

func (h *Handler) ValidateReport(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in ValidateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p, _ := auth.PrincipalFromContext(c.Request().Context())
	rp, err := h.svc.Validate(c.Request().Context(), p, id, in)
	if err != nil {
		return echo.NewHTTPError(apperr.StatusCode(err), err.Error())
	}
	return c.JSON(http.StatusOK, rp)
}

func (h *Handler) GetReport(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, _ := auth.PrincipalFromContext(c.Request().Context())
	rp, err := h.svc.Get(c.Request().Context(), p, id)
	if err != nil {
		return echo.NewHTTPError(apperr.StatusCode(err), err.Error())
	}
	return c.JSON(http.StatusOK, rp)
}

func (h *Handler) ListReports(c echo.Context) error {
	p, _ := auth.PrincipalFromContext(c.Request().Context())
	pg := pagination.FromContext(c)

	var patientID *uuid.UUID
	if v := c.QueryParam("patient_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		patientID = &id
	}

	items, total, err := h.svc.List(c.Request().Context(), p, patientID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(apperr.StatusCode(err), err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListPendingReports(c echo.Context) error {
	p, _ := auth.PrincipalFromContext(c.Request().Context())
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListPending(c.Request().Context(), p, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(apperr.StatusCode(err), err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) SuggestMedicines(c echo.Context) error {
	var in SuggestInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p, _ := auth.PrincipalFromContext(c.Request().Context())
	out, err := h.svc.SuggestMedicines(c.Request().Context(), p, in)
	if err != nil {
		return echo.NewHTTPError(apperr.StatusCode(err), err.Error())
	}
	return c.JSON(http.StatusOK, out)
}
