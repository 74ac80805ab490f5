package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	services "github.com/deckwise/analyzer-be/service"
	"github.com/deckwise/analyzer-be/types"
	"github.com/deckwise/analyzer-be/utils"
)

const maxUploadSize = 10 << 20

type UploadHandler struct {
	analysis  *services.AnalysisService
	ws        *services.WebSocketService
	uploadDir string
}

func NewUploadHandler(analysis *services.AnalysisService, ws *services.WebSocketService, uploadDir string) *UploadHandler {
	return &UploadHandler{
		analysis:  analysis,
		ws:        ws,
		uploadDir: uploadDir,
	}
}

// UploadPDFHandler accepts a PDF, runs the analysis pipeline and streams
// progress as SSE events. The final event carries either the analysis
// payload or the mapped pipeline error.
func (h *UploadHandler) UploadPDFHandler(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Invalid file",
		})
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Only PDF files are supported",
		})
		return
	}
	if header.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "File too large",
		})
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Failed to read file",
		})
		return
	}
	if len(data) > maxUploadSize {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "File too large",
		})
		return
	}

	documentType := c.Request.FormValue("document_type")

	if h.uploadDir != "" {
		// The copy on disk is a convenience, not a requirement.
		if _, err := utils.SaveUploadWithTimestamp(data, h.uploadDir, header.Filename); err != nil {
			log.Printf("Failed to save upload: %v", err)
		}
	}

	statusChan := make(chan types.AnalysisProgress, 16)
	type analyzeReply struct {
		outcome *services.AnalysisOutcome
		err     error
	}
	replyChan := make(chan analyzeReply, 1)
	go func() {
		outcome, err := h.analysis.Analyze(c.Request.Context(), data, header.Filename, documentType, statusChan)
		replyChan <- analyzeReply{outcome: outcome, err: err}
	}()

	clientGone := c.Writer.CloseNotify()
	for {
		select {
		case <-clientGone:
			return
		case status, ok := <-statusChan:
			if !ok {
				statusChan = nil
				continue
			}
			if h.ws != nil {
				h.ws.Broadcast(status)
			}
			jsonStatus, err := json.Marshal(status)
			if err != nil {
				continue
			}
			c.SSEvent("message", string(jsonStatus))
			c.Writer.Flush()
		case reply := <-replyChan:
			if reply.err != nil {
				c.JSON(statusForError(reply.err), types.DataResponse{
					Status:  "error",
					Message: reply.err.Error(),
				})
				return
			}
			c.JSON(http.StatusOK, types.DataResponse{
				Status: "success",
				Data: types.AnalyzeResponse{
					Filename:     header.Filename,
					DocumentType: reply.outcome.Result.DocumentType,
					Analysis:     reply.outcome.Result,
					AnalysisID:   reply.outcome.AnalysisID,
				},
			})
			return
		}
	}
}

// statusForError maps the pipeline error taxonomy onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, types.ErrUnreadableDocument):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrEmptyCorpus):
		return http.StatusUnprocessableEntity
	case errors.Is(err, types.ErrModelRequestRejected):
		return http.StatusBadGateway
	case errors.Is(err, types.ErrModelUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, types.ErrUnparseableResponse):
		return http.StatusBadGateway
	case errors.Is(err, types.ErrInvalidConfiguration):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
