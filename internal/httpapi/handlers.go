package httpapi

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"rollcall/internal/auth"
	"rollcall/internal/badge"
	"rollcall/internal/errs"
	"rollcall/internal/identity"
	"rollcall/internal/ledger"
	"rollcall/internal/queue"
	"rollcall/internal/report"
	"rollcall/internal/school"
	"rollcall/internal/store"
)

func (h *Handlers) registerSchool(c *gin.Context) {
	var req struct {
		Name      string `json:"name" binding:"required"`
		Principal string `json:"principal" binding:"required"`
		Email     string `json:"email" binding:"required"`
		Password  string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sch, err := h.schools.Register(c.Request.Context(), req.Name, req.Principal, req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"school": sch})
}

func (h *Handlers) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sch, err := h.schools.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	sess, err := auth.Issue(sch.ID, sch.Name, h.cfg.JWTIssuer, h.cfg.JWTSigningKey, h.cfg.SessionTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session issue failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":       sess.Token,
		"expires_at":  sess.ExpiresAt.Unix(),
		"school_name": sch.Name,
		"principal":   sch.Principal,
	})
}

func (h *Handlers) enrollEmployee(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	emp, err := h.registry.Enroll(c.Request.Context(), auth.SchoolID(c), req.Name)
	if err != nil {
		h.writeError(c, err)
		return
	}

	png, err := badge.Encode(emp.Badge)
	if err != nil {
		log.Printf("badge encode failed for %s: %v", emp.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "badge render failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"employee": emp,
		"code":     emp.Code,
		"token":    emp.Badge,
		"qr_png":   base64.StdEncoding.EncodeToString(png),
	})
}

func (h *Handlers) listEmployees(c *gin.Context) {
	emps, err := h.registry.List(c.Request.Context(), auth.SchoolID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"employees": emps})
}

func (h *Handlers) employeeBadge(c *gin.Context) {
	emp, err := h.registry.Employee(c.Request.Context(), c.Param("id"), auth.SchoolID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	png, err := badge.Encode(emp.Badge)
	if err != nil {
		log.Printf("badge encode failed for %s: %v", emp.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "badge render failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"employee_name": emp.Name,
		"token":         emp.Badge,
		"qr_png":        base64.StdEncoding.EncodeToString(png),
	})
}

func (h *Handlers) recordScan(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	schoolID := auth.SchoolID(c)
	res, err := h.scans.RecordScan(c.Request.Context(), req.Token, schoolID, clock())
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.publishScan(c, schoolID, res)

	body := gin.H{
		"outcome":       string(res.Outcome),
		"employee_name": res.Employee.Name,
		"time":          res.Time,
	}
	switch res.Outcome {
	case ledger.OutcomeCheckedIn:
		body["message"] = fmt.Sprintf("%s checked in at %s", res.Employee.Name, res.Time.Format("15:04:05"))
	case ledger.OutcomeCheckedOut:
		body["message"] = fmt.Sprintf("%s checked out at %s", res.Employee.Name, res.Time.Format("15:04:05"))
	case ledger.OutcomeAlreadyCheckedOut:
		body["message"] = fmt.Sprintf("%s has already checked out today", res.Employee.Name)
	}
	c.JSON(http.StatusOK, body)
}

// publishScan feeds effective transitions to the stats worker. Duplicates
// change nothing, so they are not published; a publish failure only delays
// the dashboard and is logged rather than failing the scan.
func (h *Handlers) publishScan(c *gin.Context, schoolID string, res ledger.ScanResult) {
	if h.events == nil || res.Outcome == ledger.OutcomeAlreadyCheckedOut {
		return
	}
	evt := report.ScanEvent{
		SchoolID:   schoolID,
		EmployeeID: res.Employee.ID,
		Day:        res.Entry.Day.Format("2006-01-02"),
		Outcome:    res.Outcome,
	}
	raw, err := json.Marshal(evt)
	if err != nil {
		log.Printf("scan event marshal failed: %v", err)
		return
	}
	if err := h.events.Publish(c.Request.Context(), queue.Message{Type: "scan", Body: raw}); err != nil {
		log.Printf("scan event publish failed: %v", err)
	}
}

func (h *Handlers) attendanceReport(c *gin.Context) {
	rows, err := h.reports.Attendance(c.Request.Context(), auth.SchoolID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if rows == nil {
		rows = []report.Row{}
	}
	c.JSON(http.StatusOK, gin.H{"records": rows})
}

func (h *Handlers) dashboard(c *gin.Context) {
	stats, err := h.reports.Dashboard(c.Request.Context(), auth.SchoolID(c), clock())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// writeError maps service errors onto HTTP responses. Anything unclassified
// is treated as a transient backend failure the caller may retry.
func (h *Handlers) writeError(c *gin.Context, err error) {
	switch {
	case errs.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, school.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, school.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrUnknownBadge) || isNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": "not recognized"})
	default:
		log.Printf("request failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable, retry"})
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, identity.ErrNotFound) || errors.Is(err, store.ErrNotFound)
}
