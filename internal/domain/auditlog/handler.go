package auditlog

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
	api.GET("/admin/logs", h.SearchLogs, auth.RequireRole(auth.RoleAdmin))
}

func (h *Handler) SearchLogs(c echo.Context) error {
	p, _ := auth.PrincipalFromContext(c.Request().Context())
	pg := pagination.FromContext(c)

	f := Filter{Action: c.QueryParam("action")}
	if v := c.QueryParam("actor_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid actor_id")
		}
		f.ActorID = &id
	}

	items, total, err := h.svc.Search(c.Request().Context(), p, f, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(apperr.StatusCode(err), err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
