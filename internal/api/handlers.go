package api

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"trax/internal/glossary"
	"trax/internal/sampler"
	"trax/internal/storage"
	"trax/internal/transcript"
	"trax/internal/utils"
)

// Server serves sampled tasks, the glossary and worker sessions
type Server struct {
	sampler  *sampler.Sampler
	glossary *glossary.Store
	audioURL string
}

// NewServer wires the HTTP handlers to a sampler and a glossary store
func NewServer(s *sampler.Sampler, g *glossary.Store, audioURL string) *Server {
	return &Server{
		sampler:  s,
		glossary: g,
		audioURL: audioURL,
	}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.healthCheck)

	r.POST("/tasks", s.createTask)
	r.PUT("/tasks/:id", s.publishTask)

	r.GET("/glossary", s.getGlossary)

	r.POST("/session", s.createSession)
	r.GET("/session/:worker_id", s.getSession)
	r.DELETE("/session/:worker_id", s.endSession)
}

// healthCheck returns server health status
func (s *Server) healthCheck(c *gin.Context) {
	cfg := s.sampler.Config()
	utils.Success(c, gin.H{
		"status":            "ok",
		"service":           "trax-server",
		"min_task_duration": cfg.MinTaskDuration,
		"max_task_duration": cfg.MaxTaskDuration,
		"words":             s.sampler.Len(),
	})
}

// errorResponse picks the status code for a domain error
func errorResponse(c *gin.Context, err error) {
	switch {
	case errors.Is(err, storage.ErrSessionNotFound):
		utils.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, sampler.ErrConfiguration), errors.Is(err, transcript.ErrInvalidTranscript):
		// the server was started with bounds or data it cannot sample from
		utils.Error(c, http.StatusInternalServerError, err.Error())
	default:
		utils.Error(c, http.StatusInternalServerError, "internal error")
	}
}

// createTask samples a new task from the transcript
func (s *Server) createTask(c *gin.Context) {
	task, err := s.sampler.RandomTask()
	if err != nil {
		log.Printf("[Tasks] Sampling failed: %v", err)
		errorResponse(c, err)
		return
	}

	log.Printf("[Tasks] Issued task %s (%s): body %.2f-%.2f, %d words",
		task.ID, task.Kind, task.Segments.Body.Start, task.Segments.Body.End, len(task.Segments.Body.Words))
	c.JSON(http.StatusOK, task)
}

// TaskSubmission is the annotator's edited body of a task
type TaskSubmission struct {
	WorkerID string            `json:"worker_id"`
	Words    []transcript.Word `json:"words" binding:"required"`
}

// publishTask accepts a finished task. Submissions are not stored.
func (s *Server) publishTask(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		utils.Error(c, http.StatusBadRequest, "task id is required")
		return
	}

	var req TaskSubmission
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid submission: "+err.Error())
		return
	}

	log.Printf("[Tasks] Received task %s from worker %q: %d words", id, req.WorkerID, len(req.Words))
	c.Status(http.StatusNoContent)
}

// getGlossary returns the current glossary terms
func (s *Server) getGlossary(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"gloss": s.glossary.Terms(),
	})
}

// SessionStatus describes a worker session to the web app
type SessionStatus struct {
	WorkerID           string    `json:"worker_id"`
	Active             bool      `json:"active"`
	StartedAt          time.Time `json:"started_at"`
	GlossaryModifiedAt time.Time `json:"glossary_modified_at"`
	AudioURL           string    `json:"audio_url"`
	Attachments        []string  `json:"attachments"`
}

func (s *Server) sessionStatus(sess storage.Session) SessionStatus {
	return SessionStatus{
		WorkerID:           sess.WorkerID,
		Active:             sess.Active,
		StartedAt:          sess.StartedAt,
		GlossaryModifiedAt: s.glossary.ModifiedAt(),
		AudioURL:           s.audioURL,
		Attachments:        []string{},
	}
}

// createSession issues a new worker id
func (s *Server) createSession(c *gin.Context) {
	sess := storage.NewSession()
	log.Printf("[Session] Issued worker id %s", sess.WorkerID)
	c.JSON(http.StatusCreated, s.sessionStatus(sess))
}

func (s *Server) getSession(c *gin.Context) {
	sess, err := storage.GetSession(c.Param("worker_id"))
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, s.sessionStatus(sess))
}

func (s *Server) endSession(c *gin.Context) {
	workerID := c.Param("worker_id")
	if err := storage.EndSession(workerID); err != nil {
		errorResponse(c, err)
		return
	}
	log.Printf("[Session] Ended session %s", workerID)
	c.Status(http.StatusNoContent)
}
