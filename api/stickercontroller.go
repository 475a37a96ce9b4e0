package api

import (
	"fmt"
	"image"
	"log"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"stickerbot/config"
	"stickerbot/sticker"
)

// RegisterStickerRoutes registers the single-still sticker endpoints.
func (s *Server) RegisterStickerRoutes(r *gin.Engine) {
	r.GET("/api/generate-sticker", s.handleGenerateSticker)
	r.POST("/api/animate-upload", s.handleAnimateUpload)
}

// handleGenerateSticker generates one image from a prompt and animates it
// with a synthetic motion loop.
// GET /api/generate-sticker?prompt=...&animation=float
func (s *Server) handleGenerateSticker(c *gin.Context) {
	prompt := strings.TrimSpace(c.Query("prompt"))
	if prompt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prompt is required"})
		return
	}

	kind, err := sticker.ParseMotionKind(c.DefaultQuery("animation", "float"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	log.Printf("📥 Sticker request: %q (%s)", prompt, kind)

	still, err := s.pipeline.Images.Generate(c.Request.Context(), prompt,
		config.StickerSize, config.StickerSize, rand.Int63n(99999)+1)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	s.finishStill(c, still, kind)
}

// handleAnimateUpload animates a caller-supplied still image.
// POST /api/animate-upload (multipart: image, animation)
func (s *Server) handleAnimateUpload(c *gin.Context) {
	kind, err := sticker.ParseMotionKind(c.DefaultPostForm("animation", "float"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open upload: " + err.Error()})
		return
	}
	defer f.Close()

	still, _, err := image.Decode(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to decode image: " + err.Error()})
		return
	}

	log.Printf("📥 Upload animation request: %s (%s)", fileHeader.Filename, kind)
	s.finishStill(c, still, kind)
}

// finishStill runs the shared motion flow and serves the artifact.
func (s *Server) finishStill(c *gin.Context, still image.Image, kind sticker.MotionKind) {
	outputPath, err := s.artifactPath("sticker")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	artifact, err := s.pipeline.AnimateStill(c.Request.Context(), still, kind, outputPath)
	if err != nil && !artifact.OverBudget {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	serveArtifact(c, artifact, s.pipeline.Codec.ContentType(), "whatsapp_sticker"+s.pipeline.Codec.Extension())
}

// artifactPath builds a unique per-request output path, creating the output
// directory on first use.
func (s *Server) artifactPath(kind string) (string, error) {
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}
	name := fmt.Sprintf("%s_%s%s", kind, strings.ReplaceAll(uuid.NewString(), "-", ""), s.pipeline.Codec.Extension())
	return filepath.Join(s.outputDir, name), nil
}
