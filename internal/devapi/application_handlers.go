package devapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ApplicationRequest carries a freelancer's proposal on a project
type ApplicationRequest struct {
	ProjectID    string  `json:"projectId" binding:"required"`
	Message      string  `json:"message" binding:"required"`
	ProposedRate float64 `json:"proposedRate"`
}

func (s *Server) createApplication(c *gin.Context) {
	user, _ := sessionUser(c)
	if user.Role != RoleFreedev {
		c.JSON(http.StatusForbidden, gin.H{"message": "Only freelancers can apply to projects"})
		return
	}

	var req ApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Project and message are required"})
		return
	}

	var project Project
	if err := s.db.Where("id = ?", req.ProjectID).First(&project).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"message": "Project not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find project")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	var count int64
	if err := s.db.Model(&Application{}).
		Where("project_id = ? AND freelancer_id = ?", project.ID, user.ID).
		Count(&count).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to check existing application")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"message": "You have already applied to this project"})
		return
	}

	application := &Application{
		ProjectID:    project.ID,
		FreelancerID: user.ID,
		Message:      req.Message,
		ProposedRate: req.ProposedRate,
		Status:       ApplicationPending,
	}

	if err := s.db.Create(application).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create application")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to submit application"})
		return
	}

	s.logger.Info().
		Str("application_id", application.ID).
		Str("project_id", project.ID).
		Str("freelancer_id", user.ID).
		Msg("Application submitted")

	c.JSON(http.StatusCreated, application)
}

func (s *Server) projectApplications(c *gin.Context) {
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
		c.JSON(http.StatusForbidden, gin.H{"message": "You can only view applications on your own projects"})
		return
	}

	var applications []Application
	if err := s.db.Where("project_id = ?", project.ID).
		Order("created_at DESC").
		Find(&applications).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list applications")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, applications)
}

func (s *Server) myApplications(c *gin.Context) {
	user, _ := sessionUser(c)

	var applications []Application
	if err := s.db.Where("freelancer_id = ?", user.ID).
		Preload("Project").
		Order("created_at DESC").
		Find(&applications).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list applications")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, applications)
}

// ApplicationUpdateRequest carries the revisable fields of a pending proposal
type ApplicationUpdateRequest struct {
	Message      *string  `json:"message"`
	ProposedRate *float64 `json:"proposedRate"`
}

func (s *Server) updateApplication(c *gin.Context) {
	user, _ := sessionUser(c)

	var application Application
	if err := s.db.Where("id = ?", c.Param("id")).First(&application).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"message": "Application not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find application")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	if application.FreelancerID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"message": "You can only edit your own applications"})
		return
	}
	if application.Status != ApplicationPending {
		c.JSON(http.StatusConflict, gin.H{"message": "Only pending applications can be edited"})
		return
	}

	var req ApplicationUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid application data"})
		return
	}

	if req.Message != nil {
		application.Message = *req.Message
	}
	if req.ProposedRate != nil {
		application.ProposedRate = *req.ProposedRate
	}

	if err := s.db.Save(&application).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to update application")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update application"})
		return
	}

	c.JSON(http.StatusOK, application)
}

func (s *Server) deleteApplication(c *gin.Context) {
	user, _ := sessionUser(c)

	var application Application
	if err := s.db.Where("id = ?", c.Param("id")).First(&application).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"message": "Application not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find application")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	if application.FreelancerID != user.ID && user.Role != RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"message": "You can only withdraw your own applications"})
		return
	}

	if err := s.db.Delete(&application).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to delete application")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to withdraw application"})
		return
	}

	c.Status(http.StatusNoContent)
}
