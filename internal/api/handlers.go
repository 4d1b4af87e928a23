package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"clawdia/internal/memfiles"
	"clawdia/internal/processes"
	"clawdia/internal/skills"
	"clawdia/internal/tasks"
)

const maxBodySize = 64 << 10

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"timestamp": s.now().UTC().Format("2006-01-02T15:04:05.000Z"),
	})
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.svc.Status.Snapshot(c.Request.Context()))
}

func (s *Server) handleListTasks(c *gin.Context) {
	list := s.svc.Tasks.Query(tasks.Filter{
		Status: tasks.Status(c.Query("status")),
		Date:   c.Query("date"),
		From:   c.Query("from"),
		To:     c.Query("to"),
	})
	if list == nil {
		list = []tasks.Task{}
	}
	c.JSON(http.StatusOK, gin.H{"tasks": list})
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var in tasks.NewTask
	if err := bindBody(c, &in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	task, err := s.svc.Tasks.Create(in)
	if err != nil {
		if errors.Is(err, tasks.ErrInvalidTask) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) handlePatchTask(c *gin.Context) {
	id := c.Param("id")
	var in struct {
		Status tasks.Status `json:"status"`
	}
	if err := bindBody(c, &in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	if err := s.svc.Tasks.SetStatus(id, in.Status); err != nil {
		if errors.Is(err, tasks.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
}

func (s *Server) handleProcesses(c *gin.Context) {
	list := s.svc.Processes.List()
	if list == nil {
		list = []processes.Process{}
	}
	c.JSON(http.StatusOK, gin.H{"processes": list})
}

func (s *Server) handleSkills(c *gin.Context) {
	list := s.svc.Skills.List()
	if list == nil {
		list = []skills.Skill{}
	}
	c.JSON(http.StatusOK, gin.H{"skills": list})
}

func (s *Server) handleSkillContent(c *gin.Context) {
	name := c.Param("name")
	content, err := s.svc.Skills.Content(name)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Skill not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "content": content})
}

func (s *Server) handleFiles(c *gin.Context) {
	list := s.svc.Files.List()
	if list == nil {
		list = []memfiles.File{}
	}
	c.JSON(http.StatusOK, gin.H{"files": list})
}

func (s *Server) handleFileContent(c *gin.Context) {
	path := c.Query("path")
	content, err := s.svc.Files.Content(path)
	if err != nil {
		if errors.Is(err, memfiles.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": path, "content": content})
}

// bindBody binds a JSON object through gin; an empty body binds to the zero
// value.
func bindBody(c *gin.Context, v any) error {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)
	if err := c.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
