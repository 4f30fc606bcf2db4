package visit

import (
	"net/http"
	"strconv"

	"go-fieldtrack/internal/evidence"
	"go-fieldtrack/internal/middleware"
	"go-fieldtrack/internal/shared/apperror"
	"go-fieldtrack/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type Handler struct {
	service Service
	rdb     *redis.Client
}

func NewHandler(service Service, rdb *redis.Client) *Handler {
	return &Handler{service: service, rdb: rdb}
}

func writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

// Submit handles the multipart visit form: a required photo plus optional
// geolocation fields.
func (h *Handler) Submit(c *gin.Context) {
	ident := middleware.IdentityFromGin(c)
	if ident.IsZero() {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication is required", nil)
		return
	}

	var req SubmitVisitRequest
	if err := c.ShouldBind(&req); err != nil {
		mapped := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, mapped.Status, mapped.Code, mapped.Message, nil)
		return
	}

	file, err := c.FormFile("photo")
	if err != nil || file == nil {
		response.Error(c, http.StatusBadRequest, "PHOTO_REQUIRED", "A visit photo is required", nil)
		return
	}

	content, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_INPUT", "Could not read photo", nil)
		return
	}
	defer content.Close()

	photo := evidence.Upload{
		FileName:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Content:     content,
	}

	resp, err := h.service.Submit(c.Request.Context(), ident, req, photo)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	middleware.StoreIdempotentResult(c, h.rdb, resp)
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) GetAll(c *gin.Context) {
	ident := middleware.IdentityFromGin(c)
	if ident.IsZero() {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication is required", nil)
		return
	}

	rows, err := h.service.GetAll(c.Request.Context(), ident)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	total := int64(len(rows))
	start := (page - 1) * limit
	if start > len(rows) {
		start = len(rows)
	}
	end := start + limit
	if end > len(rows) {
		end = len(rows)
	}

	meta := response.NewPaginationMeta(total, page, limit)
	response.Success(c, http.StatusOK, rows[start:end], &meta)
}
