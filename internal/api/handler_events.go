package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"maintenance-records-backend/internal/maintenance"
	"maintenance-records-backend/internal/model"
	"maintenance-records-backend/internal/parse"
)

type createEventRequest struct {
	ComponentName       string                  `json:"component_name" binding:"required"`
	EventType           model.EventType         `json:"event_type" binding:"required"`
	EventDate           string                  `json:"event_date" binding:"required"`
	UsedPartDescription *string                 `json:"used_part_description"`
	Quantity            *float64                `json:"quantity"`
	RemovedCondition    *string                 `json:"removed_condition"`
	Destination         *model.EventDestination `json:"destination"`
	Observation         *string                 `json:"observation"`
	PhotoURL            *string                 `json:"photo_url"`
}

// CreateEvent handles POST /machines/:machineId/maintenance-records/:recordId/events.
func (h *Handler) CreateEvent(c *gin.Context) {
	machineID, recordID, ok := recordPath(c)
	if !ok {
		return
	}
	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	eventDate, err := parse.Time(req.EventDate)
	if err != nil {
		badRequest(c, "invalid event_date")
		return
	}

	event, err := h.svc.CreateEvent(c.Request.Context(), machineID, recordID, maintenance.EventInput{
		ComponentName:       req.ComponentName,
		EventType:           req.EventType,
		EventDate:           eventDate,
		UsedPartDescription: req.UsedPartDescription,
		Quantity:            req.Quantity,
		RemovedCondition:    req.RemovedCondition,
		Destination:         req.Destination,
		Observation:         req.Observation,
		PhotoURL:            req.PhotoURL,
	}, currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

// ListEvents handles GET /machines/:machineId/maintenance-records/:recordId/events.
func (h *Handler) ListEvents(c *gin.Context) {
	machineID, recordID, ok := recordPath(c)
	if !ok {
		return
	}
	events, err := h.svc.ListEvents(c.Request.Context(), machineID, recordID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}
