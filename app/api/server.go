package api

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"vizbot/app"
	"vizbot/app/services"
)

// Server exposes the render pipeline over HTTP.
type Server struct {
	processor *services.VideoProcessor
}

func NewServer(processor *services.VideoProcessor) *Server {
	return &Server{processor: processor}
}

// Router constructs a Gin engine with registered routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	// Minimal middleware: recovery; logger optional to reduce verbosity
	r.Use(gin.Recovery())

	r.GET("/health", s.handleHealth)
	r.GET("/api/presets", s.handlePresets)
	r.POST("/api/render", s.handleRender)
	return r
}

// Run starts the HTTP server on the given port.
func (s *Server) Run(port string) error {
	log.Printf("🌐 API listening on :%s", port)
	return s.Router().Run(":" + port)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) handlePresets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"presets": services.PresetNames()})
}

// handleRender accepts a render request. Rendering can take minutes, so by
// default the request is validated inline and rendered in the background;
// ?wait=1 blocks until the render finishes and returns the full result.
func (s *Server) handleRender(c *gin.Context) {
	var req app.RenderVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, app.RenderVideoResponse{
			Success: false,
			Message: "Invalid JSON payload",
			Error:   err.Error(),
		})
		return
	}

	if req.AudioPath == "" || req.ImagePath == "" || req.OutputPath == "" {
		c.JSON(http.StatusBadRequest, app.RenderVideoResponse{
			Success: false,
			Message: "audio_path, image_path and output_path are required",
		})
		return
	}

	if c.Query("wait") == "1" {
		result, err := s.processor.ProcessRequest(c.Request.Context(), req.RenderRequest)
		if err != nil {
			c.JSON(statusForError(err), app.RenderVideoResponse{
				Success: false,
				Message: "Render failed",
				Result:  result,
				Error:   err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, app.RenderVideoResponse{
			Success: true,
			Message: "Render complete",
			Result:  result,
		})
		return
	}

	log.Printf("📥 Received render request: %s", req.Key())
	go func() {
		if _, err := s.processor.ProcessRequest(context.Background(), req.RenderRequest); err != nil {
			log.Printf("❌ Render failed for %s: %v", req.Key(), err)
		}
	}()
	c.JSON(http.StatusAccepted, app.RenderVideoResponse{
		Success: true,
		Message: "Render started",
	})
}

// statusForError maps pipeline error kinds onto HTTP statuses.
func statusForError(err error) int {
	switch app.KindOf(err) {
	case app.ErrInvalidInput, app.ErrUnknownPreset, app.ErrInsufficientSourceResolution:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
