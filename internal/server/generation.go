package server

import (
	"net/http"

	generationdomain "github.com/clubworks/clubledger/internal/generation/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) PreviewGeneration(c *gin.Context) {
	var req generationdomain.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.generationSvc.Preview(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) CommitGeneration(c *gin.Context) {
	var req generationdomain.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.generationSvc.Commit(c.Request.Context(), req)
	if err != nil {
		// Payments written before a mid-run failure are committed. Hand
		// the partial accounting back with the error so the operator can
		// reconcile which students were charged.
		if result.CreatedCount > 0 || result.SkippedCount > 0 {
			status, payload := mapError(err)
			c.AbortWithStatusJSON(status, gin.H{
				"error": payload,
				"data":  result,
			})
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": result})
}
