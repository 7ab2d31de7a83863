package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ManmohanBuildsProducts/hindi-indic-transcription-tool/internal/services"
	"github.com/ManmohanBuildsProducts/hindi-indic-transcription-tool/internal/utils"
)

// MaxUploadBytes caps one submitted recording. Always enforced here,
// before any audio work happens.
const MaxUploadBytes = 10 << 20

const ServiceName = "Hindi Audio Transcription API"

type RecordingHandler struct {
	svc services.RecordingService
}

func NewRecordingHandler(svc services.RecordingService) *RecordingHandler {
	return &RecordingHandler{svc: svc}
}

func (h *RecordingHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": ServiceName,
	})
}

type SubmitResponse struct {
	RecordingID string `json:"recording_id"`
	Status      string `json:"status"`
	Message     string `json:"message"`
	Source      string `json:"source"`
	Format      string `json:"format"`
	ChunksTotal int    `json:"chunks_total"`
}

func (h *RecordingHandler) Submit(c *gin.Context) {
	const op = "RecordingHandler.Submit"

	fh, err := c.FormFile("audio")
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "missing multipart field 'audio'", err))
		return
	}
	if fh.Size > MaxUploadBytes {
		writeError(c, utils.E(utils.CodePayloadTooLarge, op, "audio file too large (max 10MB)", nil))
		return
	}

	file, err := fh.Open()
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to open upload", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxUploadBytes+1))
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to read upload", err))
		return
	}
	if len(data) > MaxUploadBytes {
		writeError(c, utils.E(utils.CodePayloadTooLarge, op, "audio file too large (max 10MB)", nil))
		return
	}

	contentType := fh.Header.Get("Content-Type")

	rec, err := h.svc.Submit(c.Request.Context(), services.SubmitInput{
		Filename:    fh.Filename,
		ContentType: contentType,
		Source:      c.PostForm("source"),
		Data:        data,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, SubmitResponse{
		RecordingID: rec.ID,
		Status:      string(rec.Status),
		Message:     "recording accepted for transcription",
		Source:      string(rec.Source),
		Format:      string(rec.Format),
		ChunksTotal: rec.TotalChunks,
	})
}

func (h *RecordingHandler) Get(c *gin.Context) {
	rec, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *RecordingHandler) Chunks(c *gin.Context) {
	chunks, err := h.svc.Chunks(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chunks": chunks})
}

func (h *RecordingHandler) List(c *gin.Context) {
	recs, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recordings": recs})
}
