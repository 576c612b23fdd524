package devapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ProjectRequest carries the writable project fields
type ProjectRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	Budget      float64  `json:"budget"`
	Skills      []string `json:"skills"`
}

func (s *Server) listProjects(c *gin.Context) {
	query := s.db.Model(&Project{}).Order("created_at DESC")

	if clientID := c.Query("clientId"); clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}
	if search := c.Query("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	var projects []Project
	if err := query.Find(&projects).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list projects")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	// Skills are stored as a JSON blob, so the skill filter runs in memory
	if skill := strings.ToLower(c.Query("skill")); skill != "" {
		filtered := projects[:0]
		for _, p := range projects {
			for _, have := range p.Skills {
				if strings.ToLower(have) == skill {
					filtered = append(filtered, p)
					break
				}
			}
		}
		projects = filtered
	}

	c.JSON(http.StatusOK, projects)
}

func (s *Server) getProject(c *gin.Context) {
	var project Project
	if err := s.db.Where("id = ?", c.Param("id")).First(&project).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"message": "Project not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find project")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, project)
}

func (s *Server) createProject(c *gin.Context) {
	user, _ := sessionUser(c)
	if user.Role != RoleClient {
		c.JSON(http.StatusForbidden, gin.H{"message": "Only clients can post projects"})
		return
	}

	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Title is required"})
		return
	}

	project := &Project{
		Title:       req.Title,
		Description: req.Description,
		Budget:      req.Budget,
		Skills:      req.Skills,
		Status:      ProjectOpen,
		ClientID:    user.ID,
	}

	if err := s.db.Create(project).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create project")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create project"})
		return
	}

	s.logger.Info().Str("project_id", project.ID).Str("client_id", user.ID).Msg("Project created")

	c.JSON(http.StatusCreated, project)
}

func (s *Server) updateProject(c *gin.Context) {
	user, _ := sessionUser(c)

	var project Project
	if err := s.db.Where("id = ?", c.Param("id")).First(&project).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"message": "Project not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find project")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	if project.ClientID != user.ID && user.Role != RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"message": "You can only edit your own projects"})
		return
	}

	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Title is required"})
		return
	}

	project.Title = req.Title
	project.Description = req.Description
	project.Budget = req.Budget
	project.Skills = req.Skills

	if err := s.db.Save(&project).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to update project")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update project"})
		return
	}

	c.JSON(http.StatusOK, project)
}

func (s *Server) deleteProject(c *gin.Context) {
	user, _ := sessionUser(c)

	var project Project
	if err := s.db.Where("id = ?", c.Param("id")).First(&project).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"message": "Project not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find project")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	if project.ClientID != user.ID && user.Role != RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"message": "You can only delete your own projects"})
		return
	}

	if err := s.db.Where("project_id = ?", project.ID).Delete(&Application{}).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to delete project applications")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete project"})
		return
	}

	if err := s.db.Delete(&project).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to delete project")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete project"})
		return
	}

	s.logger.Info().Str("project_id", project.ID).Str("deleted_by", user.ID).Msg("Project deleted")

	c.Status(http.StatusNoContent)
}
