package devapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DashboardStats summarizes activity for the role dashboards
type DashboardStats struct {
	ActiveProjects    int     `json:"activeProjects"`
	CompletedProjects int     `json:"completedProjects"`
	TotalEarned       float64 `json:"totalEarned"`
}

// FreelanceDashboardResponse is the freelancer landing view
type FreelanceDashboardResponse struct {
	Applications []Application  `json:"applications"`
	Projects     []Project      `json:"projects"`
	Stats        DashboardStats `json:"stats"`
}

// ClientDashboardResponse is the client landing view
type ClientDashboardResponse struct {
	Projects  []Project      `json:"projects"`
	Proposals []Application  `json:"proposals"`
	Stats     DashboardStats `json:"stats"`
}

func (s *Server) freelanceDashboard(c *gin.Context) {
	user, _ := sessionUser(c)
	if user.Role != RoleFreedev {
		c.JSON(http.StatusForbidden, gin.H{"message": "Freelancer access required"})
		return
	}

	var applications []Application
	if err := s.db.Where("freelancer_id = ?", user.ID).
		Preload("Project").
		Order("created_at DESC").
		Find(&applications).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to load applications")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	var openProjects []Project
	if err := s.db.Where("status = ?", ProjectOpen).
		Order("created_at DESC").
		Limit(10).
		Find(&openProjects).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to load open projects")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	stats := DashboardStats{}
	for _, app := range applications {
		if app.Project == nil {
			continue
		}
		switch app.Project.Status {
		case ProjectInProgress:
			stats.ActiveProjects++
		case ProjectCompleted:
			stats.CompletedProjects++
			stats.TotalEarned += app.ProposedRate
		}
	}

	c.JSON(http.StatusOK, FreelanceDashboardResponse{
		Applications: applications,
		Projects:     openProjects,
		Stats:        stats,
	})
}

func (s *Server) clientDashboard(c *gin.Context) {
	user, _ := sessionUser(c)
	if user.Role != RoleClient {
		c.JSON(http.StatusForbidden, gin.H{"message": "Client access required"})
		return
	}

	var projects []Project
	if err := s.db.Where("client_id = ?", user.ID).
		Order("created_at DESC").
		Find(&projects).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to load projects")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	stats := DashboardStats{}
	projectIDs := make([]string, 0, len(projects))
	for _, p := range projects {
		projectIDs = append(projectIDs, p.ID)
		switch p.Status {
		case ProjectOpen, ProjectInProgress:
			stats.ActiveProjects++
		case ProjectCompleted:
			stats.CompletedProjects++
		}
	}

	var proposals []Application
	if len(projectIDs) > 0 {
		if err := s.db.Where("project_id IN ?", projectIDs).
			Order("created_at DESC").
			Find(&proposals).Error; err != nil {
			s.logger.Error().Err(err).Msg("Failed to load proposals")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			return
		}
	}

	c.JSON(http.StatusOK, ClientDashboardResponse{
		Projects:  projects,
		Proposals: proposals,
		Stats:     stats,
	})
}
