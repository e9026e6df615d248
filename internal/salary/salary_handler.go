package salary

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	salaryerrors "go-salary/internal/salary/errors"
	"go-salary/internal/shared/apperror"
	"go-salary/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("salary.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("salary.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("salary request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
		zap.Error(err),
	)

	if fields, ok := httpErr.Details.(map[string][]string); ok {
		response.ValidationFailed(c, httpErr.Status, httpErr.Message, fields)
		return
	}
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message)
}

func (h *Handler) writeBindError(c *gin.Context, err error) {
	mapped := apperror.MapBindError(err)

	var validationErr *apperror.ValidationError
	if errors.As(mapped, &validationErr) {
		h.logger.Debug("salary request validation failed",
			zap.String("path", c.FullPath()),
			zap.Strings("fields", apperror.FieldNames(validationErr.Fields)),
		)
	}
	h.writeServiceError(c, mapped)
}

func parseID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, salaryerrors.ErrInvalidSalaryID
	}
	return id, nil
}

// bindUpdateRequest treats an empty body as an empty patch and rejects
// mutable fields sent as null alongside any other field errors.
func bindUpdateRequest(c *gin.Context, req *UpdateSalaryRequest) error {
	err := c.ShouldBindJSON(req)
	if errors.Is(err, io.EOF) {
		err = nil
	}

	nullErr := apperror.NotNullFields(req.NullFields())
	if err == nil {
		if nullErr != nil {
			return nullErr
		}
		return nil
	}

	mapped := apperror.MapBindError(err)
	var validationErr *apperror.ValidationError
	if nullErr != nil && errors.As(mapped, &validationErr) {
		return validationErr.Merge(nullErr)
	}
	return mapped
}

func (h *Handler) GetAll(c *gin.Context) {
	resp, err := h.service.GetAll(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateSalaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}

	resp, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	var req UpdateSalaryRequest
	if err := bindUpdateRequest(c, &req); err != nil {
		h.writeBindError(c, err)
		return
	}

	resp, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.NoContent(c, http.StatusNoContent)
}
