package api

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"stickerbot/genai"
	"stickerbot/sticker"
	"stickerbot/taskstore"
)

// ArtifactStore publishes finished stickers to object storage and serves
// them back by key.
type ArtifactStore interface {
	Upload(ctx context.Context, artifact sticker.EncodedArtifact, contentType string) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Has(ctx context.Context, key string) (bool, error)
	Remove(ctx context.Context, key string) error
}

// Server holds the dependencies shared by the HTTP controllers.
type Server struct {
	pipeline  *sticker.Pipeline
	video     genai.VideoGenerator // nil when RUNWARE_API_KEY is not configured
	tasks     taskstore.Store
	artifacts ArtifactStore // nil keeps async results on local disk
	outputDir string
}

// NewServer wires the controllers to a pipeline, an optional video backend,
// a task store and an optional artifact store. Artifacts are written under
// outputDir; with an artifact store configured, async results move to object
// storage once finished.
func NewServer(pipeline *sticker.Pipeline, video genai.VideoGenerator, tasks taskstore.Store, artifacts ArtifactStore, outputDir string) *Server {
	return &Server{
		pipeline:  pipeline,
		video:     video,
		tasks:     tasks,
		artifacts: artifacts,
		outputDir: outputDir,
	}
}

// Router constructs a Gin engine with registered routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	// Minimal middleware: recovery; logger optional to reduce verbosity
	r.Use(gin.Recovery())

	RegisterHealthRoutes(r)
	s.RegisterStickerRoutes(r)
	s.RegisterAnimationRoutes(r)
	s.RegisterVideoRoutes(r)
	return r
}

// statusForError maps the pipeline error taxonomy onto HTTP status codes.
// Budget overruns are not mapped here: the artifact is still served, with a
// response header flagging the overrun.
func statusForError(err error) int {
	var cfgErr *sticker.ConfigurationError
	if errors.As(err, &cfgErr) {
		return http.StatusBadRequest
	}
	var upstreamErr *sticker.UpstreamServiceError
	var contractErr *sticker.ContractViolationError
	if errors.As(err, &upstreamErr) || errors.As(err, &contractErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// serveArtifact sends a finished sticker file, flagging over-budget results.
func serveArtifact(c *gin.Context, artifact sticker.EncodedArtifact, contentType, downloadName string) {
	if artifact.OverBudget {
		c.Header("X-Sticker-Over-Budget", "true")
	}
	c.Header("Content-Type", contentType)
	c.FileAttachment(artifact.Path, downloadName)
}

// cleanupLater removes request-scoped files once the response has been sent.
func cleanupLater(paths ...string) {
	go func() {
		time.Sleep(5 * time.Second)
		for _, p := range paths {
			_ = os.Remove(p)
		}
	}()
}

// cleanupRemoteLater expires a served object-storage artifact.
func (s *Server) cleanupRemoteLater(key string) {
	go func() {
		time.Sleep(5 * time.Second)
		if err := s.artifacts.Remove(context.Background(), key); err != nil {
			log.Printf("⚠️  Failed to expire artifact %s: %v", key, err)
		}
	}()
}
