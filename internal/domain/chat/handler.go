package chat

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/radassist/radassist/internal/platform/ai"
	"github.com/radassist/radassist/internal/platform/apperr"
	"github.com/radassist/radassist/internal/platform/auth"
	"github.com/radassist/radassist/pkg/pagination"
)

// assistant covers the stateless clinical helpers exposed alongside chat.
type assistant interface {
	ClassifyDisease(ctx context.Context, symptoms, medicalHistory, scanFindings string) (*ai.DiseaseClassification, error)
	AssessRisk(ctx context.Context, findings []string, medicalHistory string) (*ai.RiskAssessment, error)
}

type Handler struct {
	svc *Service
	ai  assistant
}

func NewHandler(svc *Service, ai assistant) *Handler {
	return &Handler{svc: svc, ai: ai}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/chat", h.SendMessage)
	api.GET("/chat/sessions", h.ListSessions)
	api.GET("/chat/sessions/:id/messages", h.ListMessages)
	api.POST("/chat/sessions/:id/end", h.EndSession)

	clinician := auth.RequireRole(auth.RoleDoctor)
	api.POST("/ai/classify", h.Classify, clinician)
	api.POST("/ai/assess-risk", h.AssessRisk, clinician)
}

func (h *Handler) SendMessage(c echo.Context) error {
	p, _ := auth.PrincipalFromContext(c.Request().Context())

	var in SendInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	out, err := h.svc.SendMessage(c.Request().Context(), p, in)
	if err != nil {
		return echo.NewHTTPError(apperr.StatusCode(err), err.Error())
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) ListSessions(c echo.Context) error {
	p, _ := auth.PrincipalFromContext(c.Request().Context())
	pg := pagination.FromContext(c)

	items, total, err := h.svc.ListSessions(c.Request().Context(), p, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(apperr.StatusCode(err), err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListMessages(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, _ := auth.PrincipalFromContext(c.Request().Context())
	pg := pagination.FromContext(c)

	items, total, err := h.svc.ListMessages(c.Request().Context(), p, id, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(apperr.StatusCode(err), err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) EndSession(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, _ := auth.PrincipalFromContext(c.Request().Context())
	if err := h.svc.EndSession(c.Request().Context(), p, id); err != nil {
		return echo.NewHTTPError(apperr.StatusCode(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

type classifyRequest struct {
	Symptoms       string `json:"symptoms"`
	MedicalHistory string `json:"medical_history"`
	ScanFindings   string `json:"scan_findings"`
}

func (h *Handler) Classify(c echo.Context) error {
	var in classifyRequest
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if in.Symptoms == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "symptoms required")
	}
	out, err := h.ai.ClassifyDisease(c.Request().Context(), in.Symptoms, in.MedicalHistory, in.ScanFindings)
	if err != nil {
		return echo.NewHTTPError(apperr.StatusCode(err), err.Error())
	}
	return c.JSON(http.StatusOK, out)
}

type assessRiskRequest struct {
	Findings       []string `json:"findings"`
	MedicalHistory string   `json:"medical_history"`
}

func (h *Handler) AssessRisk(c echo.Context) error {
	var in assessRiskRequest
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(in.Findings) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "findings required")
	}
	out, err := h.ai.AssessRisk(c.Request().Context(), in.Findings, in.MedicalHistory)
	if err != nil {
		return echo.NewHTTPError(apperr.StatusCode(err), err.Error())
	}
	return c.JSON(http.StatusOK, out)
}
