package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campboard/campboard/internal/export"
	"github.com/campboard/campboard/internal/schedule"
	"github.com/campboard/campboard/internal/schedules"
	"github.com/campboard/campboard/internal/store"
	"github.com/campboard/campboard/pkg/logger"
)

// ScheduleHandler serves schedule CRUD, grid and structural edits, summaries
// and the CSV export. Every route requires an authenticated identity; the
// service layer enforces per-schedule membership on top of that.
type ScheduleHandler struct {
	schedulesSvc *schedules.Service
	exporter     *export.Exporter // nil when no object storage is configured
}

func NewScheduleHandler(s *schedules.Service, e *export.Exporter) *ScheduleHandler {
	return &ScheduleHandler{schedulesSvc: s, exporter: e}
}

// Register routes under an authenticated group.
func (h *ScheduleHandler) Register(rg *gin.RouterGroup) {
	s := rg.Group("/schedules")
	s.GET("", h.List)
	s.POST("", h.Create)
	s.GET("/:id", h.Get)
	s.DELETE("/:id", h.Delete)
	s.PUT("/:id/cells", h.SetCell)
	s.POST("/:id/camps", h.AddCamp)
	s.DELETE("/:id/camps/:name", h.RemoveCamp)
	s.POST("/:id/kids", h.AddKid)
	s.DELETE("/:id/kids/:name", h.RemoveKid)
	s.POST("/:id/collaborators", h.AddCollaborator)
	s.DELETE("/:id/collaborators/:accountId", h.RemoveCollaborator)
	s.GET("/:id/summary/:kid", h.Summary)
	s.GET("/:id/summary/:kid/export", h.ExportSummary)
}

// respondScheduleError translates service errors into HTTP statuses. A
// contention give-up maps to 409 so the client simply retries the edit.
func respondScheduleError(c *gin.Context, err error) {
	switch err {
	case store.ErrNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "schedule not found"})
	case schedules.ErrNotAllowed:
		c.JSON(http.StatusForbidden, gin.H{"error": "not a member of this schedule"})
	case schedules.ErrOutOfRange:
		c.JSON(http.StatusBadRequest, gin.H{"error": "cell coordinates out of range"})
	case schedules.ErrTooMuchContention:
		c.JSON(http.StatusConflict, gin.H{"error": "schedule busy, retry"})
	default:
		logger.Errorf("schedule operation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
	}
}

// scheduleView decorates a document with the derived per-kid colors so
// clients render consistently without re-implementing the palette.
func scheduleView(d *schedule.Document) gin.H {
	colors := make(map[string]string, len(d.AllKids))
	for _, kid := range d.AllKids {
		colors[kid] = schedule.ColorFor(kid, d.AllKids)
	}
	return gin.H{"schedule": d, "colors": colors}
}

// List returns every schedule on the caller's account, owned and shared.
func (h *ScheduleHandler) List(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}
	docs, err := h.schedulesSvc.ListForAccount(c.Request.Context(), id)
	if err != nil {
		respondScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedules": docs})
}

// Create provisions a schedule for one of the caller's kids.
func (h *ScheduleHandler) Create(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req struct {
		KidName   string    `json:"kidName" binding:"required"`
		StartDate time.Time `json:"startDate" binding:"required"`
		WeekCount int       `json:"weekCount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d, err := h.schedulesSvc.Create(c.Request.Context(), id, req.KidName, req.StartDate, req.WeekCount)
	if err == store.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}
	if err != nil {
		logger.Errorf("schedule create failed: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, scheduleView(d))
}

func (h *ScheduleHandler) Get(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}
	d, err := h.schedulesSvc.Get(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		respondScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, scheduleView(d))
}

func (h *ScheduleHandler) Delete(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}
	if err := h.schedulesSvc.Delete(c.Request.Context(), id, c.Param("id")); err != nil {
		respondScheduleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetCell replaces the attendee list of one cell.
func (h *ScheduleHandler) SetCell(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req struct {
		CampIndex int      `json:"campIndex"`
		WeekIndex int      `json:"weekIndex"`
		Kids      []string `json:"kids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d, err := h.schedulesSvc.SetCell(c.Request.Context(), id, c.Param("id"), req.CampIndex, req.WeekIndex, req.Kids)
	if err != nil {
		respondScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, scheduleView(d))
}

// edit runs one named-structural edit and writes the standard response.
func (h *ScheduleHandler) edit(c *gin.Context, fn func(ctx *gin.Context, identity, scheduleID string) (*schedule.Document, error)) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}
	d, err := fn(c, id, c.Param("id"))
	if err != nil {
		respondScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, scheduleView(d))
}

func bindName(c *gin.Context) (string, bool) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return req.Name, true
}

func (h *ScheduleHandler) AddCamp(c *gin.Context) {
	name, ok := bindName(c)
	if !ok {
		return
	}
	h.edit(c, func(ctx *gin.Context, identity, scheduleID string) (*schedule.Document, error) {
		return h.schedulesSvc.AddCamp(ctx.Request.Context(), identity, scheduleID, name)
	})
}

func (h *ScheduleHandler) RemoveCamp(c *gin.Context) {
	h.edit(c, func(ctx *gin.Context, identity, scheduleID string) (*schedule.Document, error) {
		return h.schedulesSvc.RemoveCamp(ctx.Request.Context(), identity, scheduleID, ctx.Param("name"))
	})
}

func (h *ScheduleHandler) AddKid(c *gin.Context) {
	name, ok := bindName(c)
	if !ok {
		return
	}
	h.edit(c, func(ctx *gin.Context, identity, scheduleID string) (*schedule.Document, error) {
		return h.schedulesSvc.AddKid(ctx.Request.Context(), identity, scheduleID, name)
	})
}

func (h *ScheduleHandler) RemoveKid(c *gin.Context) {
	h.edit(c, func(ctx *gin.Context, identity, scheduleID string) (*schedule.Document, error) {
		return h.schedulesSvc.RemoveKid(ctx.Request.Context(), identity, scheduleID, ctx.Param("name"))
	})
}

func (h *ScheduleHandler) AddCollaborator(c *gin.Context) {
	var req struct {
		AccountID string `json:"accountId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.edit(c, func(ctx *gin.Context, identity, scheduleID string) (*schedule.Document, error) {
		return h.schedulesSvc.AddCollaborator(ctx.Request.Context(), identity, scheduleID, req.AccountID)
	})
}

func (h *ScheduleHandler) RemoveCollaborator(c *gin.Context) {
	h.edit(c, func(ctx *gin.Context, identity, scheduleID string) (*schedule.Document, error) {
		return h.schedulesSvc.RemoveCollaborator(ctx.Request.Context(), identity, scheduleID, ctx.Param("accountId"))
	})
}

// Summary projects the per-week itinerary for one kid, with that kid's
// display color.
func (h *ScheduleHandler) Summary(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}
	kid := c.Param("kid")
	weeks, err := h.schedulesSvc.Summary(c.Request.Context(), id, c.Param("id"), kid)
	if err != nil {
		respondScheduleError(c, err)
		return
	}
	d, err := h.schedulesSvc.Get(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		respondScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"kid":   kid,
		"color": schedule.ColorFor(kid, d.AllKids),
		"weeks": weeks,
	})
}

// ExportSummary renders the kid's summary as CSV, uploads it to object
// storage and returns a short-lived download link.
func (h *ScheduleHandler) ExportSummary(c *gin.Context) {
	if h.exporter == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "object storage not configured"})
		return
	}
	id, ok := requireIdentity(c)
	if !ok {
		return
	}
	d, err := h.schedulesSvc.Get(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		respondScheduleError(c, err)
		return
	}
	key, url, err := h.exporter.SummaryCSV(c.Request.Context(), d, c.Param("kid"))
	if err != nil {
		logger.Errorf("summary export for schedule %s failed: %v", d.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "url": url})
}
