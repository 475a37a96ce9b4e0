package api

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"stickerbot/config"
)

// RegisterAnimationRoutes registers the multi-frame animation endpoint.
func (s *Server) RegisterAnimationRoutes(r *gin.Engine) {
	r.GET("/api/generate-animation", s.handleGenerateAnimation)
}

// handleGenerateAnimation runs the full expansion flow: concept → frame
// prompts → one generated image per frame → animated sticker.
// GET /api/generate-animation?concept=...&frames=4
func (s *Server) handleGenerateAnimation(c *gin.Context) {
	concept := strings.TrimSpace(c.Query("concept"))
	if concept == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "concept is required"})
		return
	}

	frames, err := strconv.Atoi(c.DefaultQuery("frames", "4"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "frames must be an integer"})
		return
	}

	log.Printf("📥 Animation request: %q (%d frames)", concept, frames)

	outputPath, err := s.artifactPath("animation")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	artifact, err := s.pipeline.GenerateAnimation(c.Request.Context(), concept, frames, config.DefaultFPS, outputPath)
	if err != nil && !artifact.OverBudget {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	serveArtifact(c, artifact, s.pipeline.Codec.ContentType(), "whatsapp_sticker"+s.pipeline.Codec.Extension())
}
