package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"maintenance-records-backend/internal/maintenance"
	"maintenance-records-backend/internal/model"
	"maintenance-records-backend/internal/parse"
)

type createRecordRequest struct {
	ProblemDescription string          `json:"problem_description" binding:"required"`
	Priority           *model.Priority `json:"priority"`
	Category           *model.Category `json:"category"`
	Shift              *model.Shift    `json:"shift"`
	ResponsibleID      *int64          `json:"responsible_id"`
	StartedAt          *string         `json:"started_at"`
}

// CreateRecord handles POST /machines/:machineId/maintenance-records.
func (h *Handler) CreateRecord(c *gin.Context) {
	machineID, ok := pathID(c, "machineId")
	if !ok {
		return
	}
	var req createRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	startedAt, err := parse.OptionalTime(req.StartedAt)
	if err != nil {
		badRequest(c, "invalid started_at")
		return
	}

	record, err := h.svc.Create(c.Request.Context(), machineID, maintenance.CreateInput{
		ProblemDescription: req.ProblemDescription,
		Priority:           req.Priority,
		Category:           req.Category,
		Shift:              req.Shift,
		ResponsibleID:      req.ResponsibleID,
		StartedAt:          startedAt,
	}, currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// ListRecords handles GET /machines/:machineId/maintenance-records.
func (h *Handler) ListRecords(c *gin.Context) {
	machineID, ok := pathID(c, "machineId")
	if !ok {
		return
	}
	filter, ok := bindFilter(c)
	if !ok {
		return
	}
	records, err := h.svc.ListRecords(c.Request.Context(), machineID, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// ListAllRecords handles GET /maintenance-records.
func (h *Handler) ListAllRecords(c *gin.Context) {
	filter, ok := bindFilter(c)
	if !ok {
		return
	}
	if raw := c.Query("machine_id"); raw != "" {
		id, err := parse.ID(raw)
		if err != nil {
			badRequest(c, "invalid machine_id")
			return
		}
		filter.MachineID = &id
	}
	records, err := h.svc.ListAllRecords(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// bindFilter reads the listing query parameters, writing a 400 response on invalid values.
func bindFilter(c *gin.Context) (maintenance.Filter, bool) {
	var f maintenance.Filter

	if v := c.Query("status"); v != "" {
		s := model.RecordStatus(strings.ToUpper(v))
		if !s.IsValid() {
			badRequest(c, "invalid status")
			return f, false
		}
		f.Status = &s
	}
	if v := c.Query("priority"); v != "" {
		p := model.Priority(strings.ToUpper(v))
		if !p.IsValid() {
			badRequest(c, "invalid priority")
			return f, false
		}
		f.Priority = &p
	}
	if v := c.Query("category"); v != "" {
		cat := model.Category(strings.ToUpper(v))
		if !cat.IsValid() {
			badRequest(c, "invalid category")
			return f, false
		}
		f.Category = &cat
	}
	if v := c.Query("shift"); v != "" {
		s := model.Shift(strings.ToUpper(v))
		if !s.IsValid() {
			badRequest(c, "invalid shift")
			return f, false
		}
		f.Shift = &s
	}
	if v := c.Query("responsible_id"); v != "" {
		id, err := parse.ID(v)
		if err != nil {
			badRequest(c, "invalid responsible_id")
			return f, false
		}
		f.ResponsibleID = &id
	}
	f.Query = c.Query("query")
	return f, true
}

// GetRecord handles GET /machines/:machineId/maintenance-records/:recordId.
func (h *Handler) GetRecord(c *gin.Context) {
	machineID, recordID, ok := recordPath(c)
	if !ok {
		return
	}
	record, err := h.svc.Find(c.Request.Context(), machineID, recordID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

type updateRecordRequest struct {
	ProblemDescription *string         `json:"problem_description"`
	Priority           *model.Priority `json:"priority"`
	Category           *model.Category `json:"category"`
	Shift              *model.Shift    `json:"shift"`
	ResponsibleID      *int64          `json:"responsible_id"`
	StartedAt          *string         `json:"started_at"`
}

// UpdateRecord handles PATCH /machines/:machineId/maintenance-records/:recordId.
func (h *Handler) UpdateRecord(c *gin.Context) {
	machineID, recordID, ok := recordPath(c)
	if !ok {
		return
	}
	var req updateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	startedAt, err := parse.OptionalTime(req.StartedAt)
	if err != nil {
		badRequest(c, "invalid started_at")
		return
	}

	record, err := h.svc.Update(c.Request.Context(), machineID, recordID, maintenance.UpdateInput{
		ProblemDescription: req.ProblemDescription,
		Priority:           req.Priority,
		Category:           req.Category,
		Shift:              req.Shift,
		ResponsibleID:      req.ResponsibleID,
		StartedAt:          startedAt,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

type finishRecordRequest struct {
	SolutionDescription string  `json:"solution_description" binding:"required"`
	FinishedAt          *string `json:"finished_at"`
}

// FinishRecord handles PATCH /machines/:machineId/maintenance-records/:recordId/finish.
func (h *Handler) FinishRecord(c *gin.Context) {
	machineID, recordID, ok := recordPath(c)
	if !ok {
		return
	}
	var req finishRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	finishedAt, err := parse.OptionalTime(req.FinishedAt)
	if err != nil {
		badRequest(c, "invalid finished_at")
		return
	}

	record, err := h.svc.Finish(c.Request.Context(), machineID, recordID, maintenance.FinishInput{
		SolutionDescription: req.SolutionDescription,
		FinishedAt:          finishedAt,
	}, currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}
