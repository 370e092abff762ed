package server

import (
	"net/http"

	feeplandomain "github.com/clubworks/clubledger/internal/feeplan/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) AssignFeePlan(c *gin.Context) {
	var req feeplandomain.AssignFeePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.StudentID = c.Param("id")

	sub, err := s.feePlanSvc.Assign(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sub})
}

func (s *Server) GetFeePlan(c *gin.Context) {
	sub, err := s.feePlanSvc.GetByStudent(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sub})
}

func (s *Server) ActivateFeePlan(c *gin.Context) {
	s.setFeePlanActive(c, true)
}

func (s *Server) DeactivateFeePlan(c *gin.Context) {
	s.setFeePlanActive(c, false)
}

func (s *Server) setFeePlanActive(c *gin.Context, active bool) {
	sub, err := s.feePlanSvc.SetActive(c.Request.Context(), c.Param("id"), active)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sub})
}

func (s *Server) RemoveFeePlan(c *gin.Context) {
	if err := s.feePlanSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
