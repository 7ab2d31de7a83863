package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/ManmohanBuildsProducts/hindi-indic-transcription-tool/internal/api/handlers"
)

type Deps struct {
	Recordings *handlers.RecordingHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/", d.Recordings.Health)

	r.POST("/recordings", d.Recordings.Submit)
	r.GET("/recordings", d.Recordings.List)
	r.GET("/recordings/:id", d.Recordings.Get)
	r.GET("/recordings/:id/chunks", d.Recordings.Chunks)
}
