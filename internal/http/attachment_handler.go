package http

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/roberta039/avocat-onrc/internal/domain"
	"github.com/roberta039/avocat-onrc/internal/service"
)

// AttachmentHandler expune actele dosarului: upload multiplu si listare.
type AttachmentHandler struct {
	logger      *zap.Logger
	attachments *service.AttachmentService
}

func NewAttachmentHandler(logger *zap.Logger, attachments *service.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{logger: logger, attachments: attachments}
}

// Upload gestioneaza POST /attachments: multipart cu unul sau mai multe
// fisiere, rezultate per-fisier; un fisier respins nu opreste lotul.
func (h *AttachmentHandler) Upload(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		h.logger.Warn("invalid upload request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files provided"})
		return
	}

	files := make([]service.FileInput, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		data, err := readUpload(fh)
		if err != nil {
			h.logger.Warn("read upload failed", zap.Error(err), zap.String("file", fh.Filename))
			continue
		}
		files = append(files, service.FileInput{
			Name:     fh.Filename,
			MIMEType: fh.Header.Get("Content-Type"),
			Data:     data,
		})
	}

	results := h.attachments.RegisterBatch(c.Request.Context(), sessionID, files)

	out := make([]gin.H, 0, len(results))
	for _, res := range results {
		entry := gin.H{"name": res.Name, "status": uploadStatus(res.Err)}
		if res.Err == nil {
			entry["attachment"] = res.Attachment
		}
		out = append(out, entry)
	}

	c.JSON(http.StatusOK, gin.H{"session_id": sessionID, "results": out})
}

// List gestioneaza GET /attachments.
func (h *AttachmentHandler) List(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
		return
	}

	atts, err := h.attachments.List(c.Request.Context(), sessionID)
	if err != nil {
		h.logger.Error("list attachments failed", zap.Error(err), zap.String("session_id", sessionID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list attachments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"session_id": sessionID, "attachments": atts})
}

// Delete gestioneaza DELETE /attachments: scoate un act dupa numele afisat.
func (h *AttachmentHandler) Delete(c *gin.Context) {
	sessionID := c.Query("session_id")
	name := c.Query("name")
	if sessionID == "" || name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id and name are required"})
		return
	}

	if err := h.attachments.Remove(c.Request.Context(), sessionID, name); err != nil {
		h.logger.Error("remove attachment failed", zap.Error(err), zap.String("session_id", sessionID), zap.String("name", name))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not remove attachment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"session_id": sessionID, "name": name, "status": "removed"})
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func uploadStatus(err error) string {
	switch {
	case err == nil:
		return "registered"
	case errors.Is(err, domain.ErrDuplicateAttachment):
		return "duplicate"
	case errors.Is(err, domain.ErrUploadTimeout):
		return "timeout"
	case errors.Is(err, domain.ErrUploadFailed):
		return "failed"
	default:
		return "error"
	}
}
