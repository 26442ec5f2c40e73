package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/bizdir-ops/internal/cors"
	"github.com/andresuchdata/bizdir-ops/internal/service"
)

type CORSHandler struct {
	corsService *service.CORSService
	policyPath  string
}

// NewCORSHandler serves the bucket CORS policy. policyPath is the local
// document applied when PUT has an empty body.
func NewCORSHandler(corsService *service.CORSService, policyPath string) *CORSHandler {
	return &CORSHandler{corsService: corsService, policyPath: policyPath}
}

// GetCORS returns the policy currently in effect on the bucket.
func (h *CORSHandler) GetCORS(c *gin.Context) {
	policy, err := h.corsService.Verify(c.Request.Context())
	if err != nil {
		errorResponse(c, err)
		return
	}
	if policy == nil {
		policy = cors.Policy{}
	}
	c.JSON(http.StatusOK, gin.H{"cors": policy})
}

// PutCORS applies the JSON policy in the body, or the local document when the
// body is empty, then reads it back.
func (h *CORSHandler) PutCORS(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read request body"})
		return
	}

	var policy cors.Policy
	source := "request"
	if len(bytes.TrimSpace(body)) == 0 {
		source = h.policyPath
		policy, err = cors.Load(h.policyPath)
		if err != nil {
			errorResponse(c, err)
			return
		}
	} else if err := json.Unmarshal(body, &policy); err != nil {
		errorResponse(c, fmt.Errorf("%w: request body: %w", cors.ErrConfigParse, err))
		return
	}
	if policy == nil {
		policy = cors.Policy{}
	}

	current, err := h.corsService.ApplyAndVerify(c.Request.Context(), policy)
	if err != nil {
		errorResponse(c, err)
		return
	}
	if current == nil {
		current = cors.Policy{}
	}

	c.JSON(http.StatusOK, gin.H{
		"source":  source,
		"applied": policy,
		"cors":    current,
		"matches": cors.Equal(policy, current),
	})
}
