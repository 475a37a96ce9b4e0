package api

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"stickerbot/config"
	"stickerbot/genai"
	"stickerbot/sticker"
	"stickerbot/taskstore"
)

// RegisterVideoRoutes registers the async video animation endpoints.
func (s *Server) RegisterVideoRoutes(r *gin.Engine) {
	r.POST("/api/generate-video-animation", s.handleGenerateVideoAnimation)
	r.GET("/api/tasks/:id", s.handleTaskStatus)
	r.GET("/api/tasks/:id/result", s.handleTaskResult)
}

// VideoAnimationRequest is the payload for the async video flow.
type VideoAnimationRequest struct {
	Prompt   string `json:"prompt" binding:"required"`
	Duration int    `json:"duration"`
}

// handleGenerateVideoAnimation submits a text-to-video job and returns
// immediately with a task ID; the sticker is assembled in the background.
// POST /api/generate-video-animation
func (s *Server) handleGenerateVideoAnimation(c *gin.Context) {
	if s.video == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "video generation backend is not configured"})
		return
	}

	var req VideoAnimationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Duration == 0 {
		req.Duration = 3
	}

	task := taskstore.NewTask()
	if err := s.tasks.Put(c.Request.Context(), task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.Printf("📥 Video animation request: %q (%ds) task=%s", req.Prompt, req.Duration, task.ID)
	go s.runVideoJob(task, req.Prompt, req.Duration)

	c.Header("X-Task-ID", task.ID)
	c.JSON(http.StatusAccepted, gin.H{
		"task_id": task.ID,
		"status":  string(task.State),
	})
}

// runVideoJob drives submit → poll → download → frame extraction → assembly
// and records progress in the task store.
func (s *Server) runVideoJob(task taskstore.Task, prompt string, durationSec int) {
	ctx := context.Background()

	task.State = taskstore.StateRunning
	_ = s.tasks.Put(ctx, task)

	artifact, err := s.generateVideoSticker(ctx, prompt, durationSec)
	if err != nil && !artifact.OverBudget {
		log.Printf("❌ Video task %s failed: %v", task.ID, err)
		task.State = taskstore.StateFailed
		task.Error = err.Error()
		_ = s.tasks.Put(ctx, task)
		return
	}

	task.State = taskstore.StateSucceeded
	task.ContentType = s.pipeline.Codec.ContentType()
	task.ByteSize = artifact.ByteSize
	task.OverBudget = artifact.OverBudget

	if s.artifacts != nil {
		key, err := s.artifacts.Upload(ctx, artifact, task.ContentType)
		if err != nil {
			log.Printf("❌ Video task %s upload failed: %v", task.ID, err)
			task.State = taskstore.StateFailed
			task.Error = err.Error()
			_ = s.tasks.Put(ctx, task)
			return
		}
		_ = os.Remove(artifact.Path)
		task.ArtifactKey = key
		_ = s.tasks.Put(ctx, task)
		log.Printf("✅ Video task %s complete: %s", task.ID, key)
		return
	}

	task.ArtifactPath = artifact.Path
	_ = s.tasks.Put(ctx, task)
	log.Printf("✅ Video task %s complete: %s", task.ID, artifact.Path)
}

func (s *Server) generateVideoSticker(ctx context.Context, prompt string, durationSec int) (sticker.EncodedArtifact, error) {
	jobID, err := s.video.Submit(ctx, prompt, durationSec)
	if err != nil {
		return sticker.EncodedArtifact{}, err
	}

	videoURL, err := genai.AwaitVideo(ctx, s.video, jobID)
	if err != nil {
		return sticker.EncodedArtifact{}, err
	}

	videoPath := filepath.Join(s.outputDir, jobID+"_original.mp4")
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return sticker.EncodedArtifact{}, fmt.Errorf("failed to create output dir: %w", err)
	}
	if err := genai.DownloadVideo(ctx, videoURL, videoPath); err != nil {
		return sticker.EncodedArtifact{}, err
	}
	defer os.Remove(videoPath)

	frames, err := sticker.ExtractVideoFrames(videoPath, config.VideoExtractFPS)
	if err != nil {
		return sticker.EncodedArtifact{}, err
	}

	raws := make([]image.Image, len(frames))
	for i, f := range frames {
		raws[i] = f
	}

	outputPath := filepath.Join(s.outputDir, jobID+"_transparent"+s.pipeline.Codec.Extension())
	return s.pipeline.AnimateFrames(ctx, raws, config.VideoExtractFPS, outputPath)
}

// handleTaskStatus reports task progress.
// GET /api/tasks/:id
func (s *Server) handleTaskStatus(c *gin.Context) {
	task, err := s.tasks.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if errors.Is(err, taskstore.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown task"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, task)
}

// handleTaskResult downloads the finished artifact and schedules cleanup.
// GET /api/tasks/:id/result
func (s *Server) handleTaskResult(c *gin.Context) {
	task, err := s.tasks.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if errors.Is(err, taskstore.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown task"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	switch task.State {
	case taskstore.StateSucceeded:
	case taskstore.StateFailed:
		c.JSON(http.StatusBadGateway, gin.H{"error": task.Error})
		return
	default:
		c.JSON(http.StatusConflict, gin.H{"status": string(task.State)})
		return
	}

	if task.ArtifactKey != "" && s.artifacts != nil {
		s.serveRemoteArtifact(c, task)
		return
	}

	if _, err := os.Stat(task.ArtifactPath); err != nil {
		c.JSON(http.StatusGone, gin.H{"error": "artifact no longer available"})
		return
	}

	artifact := sticker.EncodedArtifact{Path: task.ArtifactPath, ByteSize: task.ByteSize, OverBudget: task.OverBudget}
	serveArtifact(c, artifact, task.ContentType, "whatsapp_sticker"+filepath.Ext(task.ArtifactPath))
	cleanupLater(task.ArtifactPath)
}

// serveRemoteArtifact streams a task result from object storage and schedules
// its expiry.
func (s *Server) serveRemoteArtifact(c *gin.Context, task taskstore.Task) {
	ctx := c.Request.Context()

	ok, err := s.artifacts.Has(ctx, task.ArtifactKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusGone, gin.H{"error": "artifact no longer available"})
		return
	}

	body, err := s.artifacts.Open(ctx, task.ArtifactKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer body.Close()

	if task.OverBudget {
		c.Header("X-Sticker-Over-Budget", "true")
	}
	name := "whatsapp_sticker" + filepath.Ext(task.ArtifactKey)
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.DataFromReader(http.StatusOK, task.ByteSize, task.ContentType, body, nil)
	s.cleanupRemoteLater(task.ArtifactKey)
}
