package handler

import (
	"net/http"

	"github.com/deppfellow/notify-dispatch/internal/model"
	"github.com/deppfellow/notify-dispatch/internal/server"
	"github.com/deppfellow/notify-dispatch/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = validator.New()

type GetUsageRequest struct {
	Protocol model.Protocol `param:"protocol" validate:"required,oneof=EMAIL SMS PUSH"`
}

func (r *GetUsageRequest) Validate() error {
	return validate.Struct(r)
}

func newGetUsageRequest() *GetUsageRequest {
	return &GetUsageRequest{}
}

type UsageHandler struct {
	Handler
	usage *service.UsageService
}

func NewUsageHandler(s *server.Server, usage *service.UsageService) *UsageHandler {
	return &UsageHandler{
		Handler: NewHandler(s),
		usage:   usage,
	}
}

// GetUsage serves GET /api/v1/usage/:protocol.
func (h *UsageHandler) GetUsage() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, req *GetUsageRequest) (*model.UsageRecord, error) {
		return h.usage.Get(c.Request().Context(), req.Protocol)
	}, http.StatusOK, newGetUsageRequest)
}
