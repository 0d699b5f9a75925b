package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campboard/campboard/internal/accounts"
	"github.com/campboard/campboard/internal/store"
	"github.com/campboard/campboard/pkg/logger"
)

// AccountHandler serves the guardian's own account: profile, kid roster and
// the unscheduled-kids query.
type AccountHandler struct {
	accountsSvc *accounts.Service
}

func NewAccountHandler(a *accounts.Service) *AccountHandler {
	return &AccountHandler{accountsSvc: a}
}

// Register routes under an authenticated group.
func (h *AccountHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/me", h.Me)
	rg.POST("/me/kids", h.AddKid)
	rg.DELETE("/me/kids/:name", h.RemoveKid)
	rg.GET("/me/kids/unscheduled", h.Unscheduled)
}

// identityFrom pulls the verified subject out of the claims the auth
// middleware stored on the context.
func identityFrom(c *gin.Context) (string, bool) {
	v, ok := c.Get("claims")
	if !ok {
		return "", false
	}
	claims, ok := v.(map[string]interface{})
	if !ok {
		return "", false
	}
	sub, _ := claims["sub"].(string)
	return sub, sub != ""
}

func requireIdentity(c *gin.Context) (string, bool) {
	id, ok := identityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing subject claim"})
	}
	return id, ok
}

// Me returns the account, provisioning it on first authenticated call.
func (h *AccountHandler) Me(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}
	v, _ := c.Get("claims")
	claims, _ := v.(map[string]interface{})
	a, err := h.accountsSvc.EnsureFromClaims(c.Request.Context(), claims)
	if err != nil {
		logger.Errorf("account lookup for %s failed: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "account lookup failed"})
		return
	}
	c.JSON(http.StatusOK, a)
}

// AddKid appends a kid name to the roster. Duplicate and blank names are
// accepted and change nothing.
func (h *AccountHandler) AddKid(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	a, err := h.accountsSvc.AddKid(c.Request.Context(), id, req.Name)
	if err == store.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}
	if err != nil {
		logger.Errorf("add kid for %s failed: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, a)
}

// RemoveKid deletes a kid name from the roster; absent names change nothing.
func (h *AccountHandler) RemoveKid(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}
	a, err := h.accountsSvc.RemoveKid(c.Request.Context(), id, c.Param("name"))
	if err == store.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}
	if err != nil {
		logger.Errorf("remove kid for %s failed: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, a)
}

// Unscheduled lists roster kids with no schedule yet, in roster order.
func (h *AccountHandler) Unscheduled(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}
	kids, err := h.accountsSvc.Unscheduled(c.Request.Context(), id)
	if err == store.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}
	if err != nil {
		logger.Errorf("unscheduled query for %s failed: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"kids": kids})
}
