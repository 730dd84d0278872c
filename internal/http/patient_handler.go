package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"clinic-relay/internal/service"
)

// PatientHandler mantiene dependencias para endpoints de pacientes.
type PatientHandler struct {
	logger   *zap.Logger
	patients *service.PatientService
}

func NewPatientHandler(logger *zap.Logger, patients *service.PatientService) *PatientHandler {
	return &PatientHandler{
		logger:   logger,
		patients: patients,
	}
}

// ListPatients maneja GET /patients.
func (h *PatientHandler) ListPatients(c *gin.Context) {
	patients, err := h.patients.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list patients failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load patients"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"patients": patients})
}

// GetPatientByPhone maneja GET /patients/by-phone/:phone: la vista de chat
// lo usa para resolver el encabezado de la conversación seleccionada.
func (h *PatientHandler) GetPatientByPhone(c *gin.Context) {
	patient, err := h.patients.GetByPhone(c.Request.Context(), c.Param("phone"))
	switch {
	case errors.Is(err, service.ErrPatientInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, pgx.ErrNoRows):
		c.JSON(http.StatusNotFound, gin.H{"error": "patient not found"})
	case err != nil:
		h.logger.Error("get patient by phone failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load patient"})
	default:
		c.JSON(http.StatusOK, gin.H{"patient": patient})
	}
}

// CreatePatient maneja POST /patients.
func (h *PatientHandler) CreatePatient(c *gin.Context) {
	var req struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create patient request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	patient, err := h.patients.Create(c.Request.Context(), req.Name, req.Phone)
	if err != nil {
		if errors.Is(err, service.ErrPatientInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("create patient failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create patient"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"patient": patient})
}

// UpdatePatient maneja PUT /patients/:id.
func (h *PatientHandler) UpdatePatient(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid patient id"})
		return
	}

	var req struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update patient request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	err = h.patients.Update(c.Request.Context(), id, req.Name, req.Phone)
	switch {
	case errors.Is(err, service.ErrPatientInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, pgx.ErrNoRows):
		c.JSON(http.StatusNotFound, gin.H{"error": "patient not found"})
	case err != nil:
		h.logger.Error("update patient failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update patient"})
	default:
		c.JSON(http.StatusOK, gin.H{"status": "updated"})
	}
}

// DeletePatient maneja DELETE /patients/:id.
func (h *PatientHandler) DeletePatient(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid patient id"})
		return
	}

	err = h.patients.Delete(c.Request.Context(), id)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		c.JSON(http.StatusNotFound, gin.H{"error": "patient not found"})
	case err != nil:
		h.logger.Error("delete patient failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete patient"})
	default:
		c.JSON(http.StatusOK, gin.H{"status": "deleted"})
	}
}
