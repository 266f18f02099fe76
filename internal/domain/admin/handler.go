package admin

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/radassist/radassist/internal/platform/apperr"
	"github.com/radassist/radassist/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/admin/stats", h.GetStats, auth.RequireRole(auth.RoleAdmin))
}

func (h *Handler) GetStats(c echo.Context) error {
	p, _ := auth.PrincipalFromContext(c.Request().Context())
	st, err := h.svc.Stats(c.Request().Context(), p)
	if err != nil {
		return echo.NewHTTPError(apperr.StatusCode(err), err.Error())
	}
	return c.JSON(http.StatusOK, st)
}
