package scan

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/radassist/radassist/internal/platform/apperr"
	"github.com/radassist/radassist/internal/platform/auth"
	"github.com/radassist/radassist/internal/platform/blobstore"
	"github.com/radassist/radassist/pkg/pagination"
)

type Handler struct {
	svc   *Service
	blobs blobstore.Store
}

func NewHandler(svc *Service, blobs blobstore.Store) *Handler {
	return &Handler{svc: svc, blobs: blobs}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/scans", h.Upload, auth.RequireRole(auth.RolePatient))
	api.GET("/scans", h.ListScans)
	api.GET("/scans/:id", h.GetScan)
	api.GET("/scans/:id/image", h.GetScanImage)
	api.POST("/scans/:id/analyze", h.AnalyzeScan)
}

// Upload accepts a multipart form with the image under "file" plus
// "modality" and an optional "description".
func (h *Handler) Upload(c echo.Context) error {
	p, _ := auth.PrincipalFromContext(c.Request().Context())

	file, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read file")
	}
	defer src.Close()

	meta, err := h.blobs.Save(c.Request().Context(), blobstore.Metadata{
		FileName:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		OwnerID:     p.AccountID.String(),
	}, src)
	if err != nil {
		switch {
		case errors.Is(err, blobstore.ErrFileTooLarge):
			return echo.NewHTTPError(http.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, blobstore.ErrInvalidContentType), errors.Is(err, blobstore.ErrMissingFileName):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to store image")
	}

	sc, err := h.svc.Register(c.Request().Context(), p, RegisterInput{
		Modality:    c.FormValue("modality"),
		ImageRef:    meta.Ref,
		Description: c.FormValue("description"),
	})
	if err != nil {
		// the scan row was never written; drop the orphaned blob
		_ = h.blobs.Delete(c.Request().Context(), meta.Ref)
		return echo.NewHTTPError(apperr.StatusCode(err), err.Error())
	}
	return c.JSON(http.StatusCreated, sc)
}

func (h *Handler) ListScans(c echo.Context) error {
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

func (h *Handler) GetScan(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, _ := auth.PrincipalFromContext(c.Request().Context())
	sc, err := h.svc.Get(c.Request().Context(), p, id)
	if err != nil {
		return echo.NewHTTPError(apperr.StatusCode(err), err.Error())
	}
	return c.JSON(http.StatusOK, sc)
}

func (h *Handler) GetScanImage(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, _ := auth.PrincipalFromContext(c.Request().Context())
	blob, meta, err := h.svc.Image(c.Request().Context(), p, id)
	if err != nil {
		if errors.Is(err, blobstore.ErrBlobNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "image not found")
		}
		return echo.NewHTTPError(apperr.StatusCode(err), err.Error())
	}
	defer blob.Close()
	return c.Stream(http.StatusOK, meta.ContentType, blob)
}

func (h *Handler) AnalyzeScan(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, _ := auth.PrincipalFromContext(c.Request().Context())
	sc, err := h.svc.Analyze(c.Request().Context(), p, id)
	if err != nil {
		return echo.NewHTTPError(apperr.StatusCode(err), err.Error())
	}
	return c.JSON(http.StatusOK, sc)
}
