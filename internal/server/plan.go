package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	plandomain "github.com/clubworks/clubledger/internal/plan/domain"
	"github.com/gin-gonic/gin"
)

type createPlanRequest struct {
	OwnerType string `json:"owner_type"`
	OwnerID   string `json:"owner_id"`
	plandomain.CreatePlanRequest
}

func (s *Server) CreatePlan(c *gin.Context) {
	var req createPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	owner, err := parseOwner(req.OwnerType, req.OwnerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	req.CreatePlanRequest.Owner = owner

	plan, err := s.planSvc.Create(c.Request.Context(), req.CreatePlanRequest)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": plan})
}

func (s *Server) ListPlans(c *gin.Context) {
	var query struct {
		OwnerType  string `form:"owner_type"`
		OwnerID    string `form:"owner_id"`
		OnlyActive bool   `form:"only_active"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	owner, err := parseOwner(query.OwnerType, query.OwnerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	plans, err := s.planSvc.List(c.Request.Context(), plandomain.ListPlanRequest{
		Owner:      owner,
		OnlyActive: query.OnlyActive,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": plans})
}

func (s *Server) GetPlanByID(c *gin.Context) {
	plan, err := s.planSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": plan})
}

func (s *Server) UpdatePlan(c *gin.Context) {
	var req plandomain.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.PlanID = c.Param("id")

	plan, err := s.planSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": plan})
}

func (s *Server) ActivatePlan(c *gin.Context) {
	s.setPlanActive(c, true)
}

func (s *Server) DeactivatePlan(c *gin.Context) {
	s.setPlanActive(c, false)
}

func (s *Server) setPlanActive(c *gin.Context, active bool) {
	plan, err := s.planSvc.SetActive(c.Request.Context(), c.Param("id"), active)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": plan})
}

func (s *Server) DeletePlan(c *gin.Context) {
	if err := s.planSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseOwner(ownerType, ownerID string) (plandomain.Owner, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(ownerID))
	if err != nil || id == 0 {
		return plandomain.Owner{}, plandomain.ErrInvalidOwner
	}
	owner := plandomain.Owner{
		Type: plandomain.OwnerType(strings.ToLower(strings.TrimSpace(ownerType))),
		ID:   id,
	}
	if !owner.IsValid() {
		return plandomain.Owner{}, plandomain.ErrInvalidOwner
	}
	return owner, nil
}
