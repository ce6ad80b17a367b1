package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/civitas-project/civitas/pkg/models"
)

// SearchLabels handles GET /labels?search=.
func (s *Server) SearchLabels(c *gin.Context) {
	labels, err := s.directory.SearchLabels(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	if labels == nil {
		labels = []models.Label{}
	}
	c.JSON(http.StatusOK, labels)
}

// SearchUsers handles GET /users?search=.
func (s *Server) SearchUsers(c *gin.Context) {
	staff, err := s.directory.SearchStaff(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	if staff == nil {
		staff = []models.StaffMember{}
	}
	c.JSON(http.StatusOK, staff)
}

// NearestCrews handles GET /crews/nearest?lat=&lng=&crew_type=.
func (s *Server) NearestCrews(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat must be a number"})
		return
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lng must be a number"})
		return
	}
	crewType := models.CrewType(c.Query("crew_type"))

	crews, err := s.directory.NearestCrews(c.Request.Context(), lat, lng, crewType)
	if err != nil {
		respondError(c, err)
		return
	}
	if crews == nil {
		crews = []models.CrewWithDistance{}
	}
	c.JSON(http.StatusOK, crews)
}
