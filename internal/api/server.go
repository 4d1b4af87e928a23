// Package api serves the dashboard JSON endpoints.
package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"clawdia/internal/memfiles"
	"clawdia/internal/processes"
	"clawdia/internal/skills"
	"clawdia/internal/status"
	"clawdia/internal/tasks"
)

type StatusProvider interface {
	Snapshot(ctx context.Context) status.AgentStatus
}

type TaskService interface {
	Query(f tasks.Filter) []tasks.Task
	Create(in tasks.NewTask) (tasks.Task, error)
	SetStatus(id string, s tasks.Status) error
}

type ProcessLister interface {
	List() []processes.Process
}

type SkillService interface {
	List() []skills.Skill
	Content(name string) (string, error)
}

type FileService interface {
	List() []memfiles.File
	Content(path string) (string, error)
}

// Services bundles the readers behind the endpoints. Files may be nil.
type Services struct {
	Status    StatusProvider
	Tasks     TaskService
	Processes ProcessLister
	Skills    SkillService
	Files     FileService
}

type Options struct {
	Prefix     string
	CORSOrigin string
	// Quiet drops the request logger.
	Quiet bool
	Now   func() time.Time
}

type Server struct {
	svc    Services
	router *gin.Engine
	now    func() time.Time
}

func NewServer(svc Services, opts Options) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	if !opts.Quiet {
		router.Use(gin.Logger())
	}
	if origin := strings.TrimSpace(opts.CORSOrigin); origin != "" {
		router.Use(cors(origin))
	}

	s := &Server{svc: svc, router: router, now: opts.Now}
	if s.now == nil {
		s.now = time.Now
	}

	prefix := "/" + strings.Trim(strings.TrimSpace(opts.Prefix), "/")
	api := router.Group(prefix)
	{
		api.GET("/health", s.handleHealth)
		api.GET("/status", s.handleStatus)
		api.GET("/tasks", s.handleListTasks)
		api.POST("/tasks", s.handleCreateTask)
		api.PATCH("/tasks/:id", s.handlePatchTask)
		api.GET("/processes", s.handleProcesses)
		api.GET("/skills", s.handleSkills)
		api.GET("/skills/:name/content", s.handleSkillContent)
		if svc.Files != nil {
			api.GET("/files", s.handleFiles)
			api.GET("/files/content", s.handleFileContent)
		}
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func cors(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Methods", "GET,POST,PATCH,OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
