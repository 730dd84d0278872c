package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"clinic-relay/internal/service"
)

// AppointmentHandler mantiene dependencias para endpoints de agenda.
type AppointmentHandler struct {
	logger *zap.Logger
	appts  *service.AppointmentService
}

func NewAppointmentHandler(logger *zap.Logger, appts *service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{
		logger: logger,
		appts:  appts,
	}
}

type appointmentRequest struct {
	PatientName  string `json:"patientName"`
	PatientPhone string `json:"patientPhone"`
	Doctor       string `json:"doctor"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	Type         string `json:"type"`
	Notes        string `json:"notes"`
}

func (r appointmentRequest) toInput() service.AppointmentInput {
	return service.AppointmentInput{
		PatientName:  r.PatientName,
		PatientPhone: r.PatientPhone,
		Doctor:       r.Doctor,
		Date:         r.Date,
		Time:         r.Time,
		Type:         r.Type,
		Notes:        r.Notes,
	}
}

// ListAppointments maneja GET /appointments.
func (h *AppointmentHandler) ListAppointments(c *gin.Context) {
	appts, err := h.appts.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list appointments failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load appointments"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointments": appts})
}

// CreateAppointment maneja POST /appointments.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req appointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create appointment request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	appt, notified, err := h.appts.Create(c.Request.Context(), req.toInput())
	if err != nil {
		if errors.Is(err, service.ErrAppointmentInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("create appointment failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create appointment"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"appointment": appt, "forwarded": notified})
}

// UpdateAppointment maneja PUT /appointments/:id.
func (h *AppointmentHandler) UpdateAppointment(c *gin.Context) {
	var req appointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update appointment request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	appt, notified, err := h.appts.Update(c.Request.Context(), c.Param("id"), req.toInput())
	switch {
	case errors.Is(err, service.ErrAppointmentInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, pgx.ErrNoRows):
		c.JSON(http.StatusNotFound, gin.H{"error": "appointment not found"})
	case err != nil:
		h.logger.Error("update appointment failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update appointment"})
	default:
		c.JSON(http.StatusOK, gin.H{"appointment": appt, "forwarded": notified})
	}
}

// ChangeStatus maneja PATCH /appointments/:id/status.
func (h *AppointmentHandler) ChangeStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid change status request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	notified, err := h.appts.ChangeStatus(c.Request.Context(), c.Param("id"), req.Status)
	switch {
	case errors.Is(err, service.ErrAppointmentInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, pgx.ErrNoRows):
		c.JSON(http.StatusNotFound, gin.H{"error": "appointment not found"})
	case err != nil:
		h.logger.Error("change appointment status failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update status"})
	default:
		c.JSON(http.StatusOK, gin.H{"status": "updated", "forwarded": notified})
	}
}
