package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
)

type GetTempUploadURLRequest struct {
	Name string `query:"name" validate:"required"`
}

func (s *Server) GetTempUploadURL(ctx echo.Context) error {
	var req GetTempUploadURLRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	url, name, err := s.server.GetTempUploadURL(ctx.Request().Context(), req.Name)
	if err != nil {
		return ctx.JSON(500, map[string]string{"error": err.Error()})
	}

	return ctx.JSON(200, map[string]string{"url": url, "name": name})
}

// UploadTempFile receives the file body directly. Only registered when
// the local storage driver is active; with MinIO the client PUTs to the
// presigned URL instead. The body is streamed as-is, so no Bind here.
func (s *Server) UploadTempFile(ctx echo.Context) error {
	name, err := url.PathUnescape(ctx.Param("*"))
	if err != nil || name == "" {
		return ctx.JSON(400, map[string]string{"error": "file name is required"})
	}
	if strings.Contains(name, "..") {
		return ctx.JSON(400, map[string]string{"error": "invalid file name"})
	}
	if s.local == nil {
		return ctx.JSON(http.StatusNotImplemented, map[string]string{"error": "direct upload is not available"})
	}

	size, err := s.local.SaveTemp(name, ctx.Request().Body)
	if err != nil {
		return ctx.JSON(500, map[string]string{"error": err.Error()})
	}

	return ctx.JSON(200, map[string]any{"name": name, "size": size})
}
