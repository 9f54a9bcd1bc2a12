package upload

import (
	"errors"
	"net/http"

	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/shared/apperror"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/shared/response"
	uploaderrors "github.com/Mermas-CC/Gestion-sigead-sub000/internal/upload/errors"

	"github.com/gin-gonic/gin"
)

// multipart overhead allowed on top of the file size limit
const formOverhead = 1 << 20

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func writeError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Upload(c *gin.Context) {
	if limit := h.service.MaxBytes(); limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+formOverhead)
	}

	header, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(c, uploaderrors.ErrFileTooLarge)
			return
		}
		writeError(c, uploaderrors.ErrMissingFile)
		return
	}

	file, err := header.Open()
	if err != nil {
		writeError(c, uploaderrors.ErrMissingFile)
		return
	}
	defer file.Close()

	resp, err := h.service.Save(c.Request.Context(), header.Filename, header.Size, file)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}
