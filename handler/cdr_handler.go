package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Aashish23092/cdr-extraction/dto"
	"github.com/Aashish23092/cdr-extraction/repository"
	"github.com/Aashish23092/cdr-extraction/service"
)

type CDRHandler struct {
	cdrService *service.CDRService
	log        *logrus.Logger
}

func NewCDRHandler(cdrService *service.CDRService, log *logrus.Logger) *CDRHandler {
	return &CDRHandler{
		cdrService: cdrService,
		log:        log,
	}
}

// Upload handles POST /cdr/upload
func (h *CDRHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "No file provided", err)
		return
	}

	response, err := h.cdrService.ProcessUpload(fileHeader)
	if err != nil {
		if errors.Is(err, service.ErrFileTooLarge) {
			h.sendError(c, http.StatusRequestEntityTooLarge, "File too large", err)
			return
		}
		h.sendError(c, http.StatusInternalServerError, "Failed to process document", err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetFile handles GET /files/:id
func (h *CDRHandler) GetFile(c *gin.Context) {
	response, err := h.cdrService.GetFile(c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.sendError(c, http.StatusNotFound, "File not found", err)
			return
		}
		h.sendError(c, http.StatusInternalServerError, "Failed to load file", err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ListFiles handles GET /files
func (h *CDRHandler) ListFiles(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	response, err := h.cdrService.ListFiles(offset, limit)
	if err != nil {
		h.sendError(c, http.StatusInternalServerError, "Failed to list files", err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// DownloadFile handles GET /files/:id/download
func (h *CDRHandler) DownloadFile(c *gin.Context) {
	rc, file, err := h.cdrService.DownloadFile(c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.sendError(c, http.StatusNotFound, "File not found", err)
			return
		}
		h.sendError(c, http.StatusInternalServerError, "Failed to open file", err)
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Header("Content-Type", file.ContentType)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		h.log.WithField("error", err.Error()).Error("Failed to stream file")
	}
}

// Confirm handles POST /cdr/:id/confirm
func (h *CDRHandler) Confirm(c *gin.Context) {
	recordID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "Invalid record id", err)
		return
	}

	var request dto.ConfirmRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := request.Validate(); err != nil {
		h.sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	response, err := h.cdrService.Confirm(uint(recordID), request.Fields)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.sendError(c, http.StatusNotFound, "Record not found", err)
			return
		}
		h.sendError(c, http.StatusInternalServerError, "Failed to confirm record", err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ExtractAPM handles POST /cdr/extract-apm
func (h *CDRHandler) ExtractAPM(c *gin.Context) {
	var request dto.APMExtractRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if request.Text == "" {
		h.sendError(c, http.StatusBadRequest, "Text is required", nil)
		return
	}

	c.JSON(http.StatusOK, h.cdrService.ExtractAPM(request.Text))
}

// Health handles GET /health
func (h *CDRHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// sendError sends a structured error response
func (h *CDRHandler) sendError(c *gin.Context, statusCode int, message string, err error) {
	errorMsg := message
	if err != nil {
		errorMsg = err.Error()
		h.log.WithFields(logrus.Fields{
			"message": message,
			"error":   err.Error(),
		}).Error("Request failed")
	}

	c.JSON(statusCode, dto.ErrorResponse{
		Error:   "EXTRACTION_FAILED",
		Message: errorMsg,
		Code:    statusCode,
	})
}
