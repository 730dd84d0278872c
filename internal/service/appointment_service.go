package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"clinic-relay/internal/domain"
	"clinic-relay/internal/repository"
	"clinic-relay/internal/webhook"
)

var (
	ErrAppointmentServiceNotConfigured = errors.New("appointment service not configured")
	ErrAppointmentInvalidInput         = errors.New("appointment patient, doctor, date and time are required")
	ErrAppointmentInvalidStatus        = errors.New("appointment status unknown")
)

// Acciones notificadas al workflow externo por cambios de agenda.
const (
	ActionCreateAppointment       = "create_appointment"
	ActionUpdateAppointment       = "update_appointment"
	ActionUpdateAppointmentStatus = "update_appointment_status"
)

// AppointmentService persiste cambios de agenda y los notifica al webhook.
// La escritura local es la autoritativa: un fallo del webhook no la revierte,
// solo se reporta como notified=false.
type AppointmentService struct {
	logger   *zap.Logger
	repo     repository.AppointmentRepository
	notifier webhook.Notifier
}

// AppointmentInput son los campos editables de un turno.
type AppointmentInput struct {
	PatientName  string
	PatientPhone string
	Doctor       string
	Date         string
	Time         string
	Type         string
	Notes        string
}

func NewAppointmentService(logger *zap.Logger, repo repository.AppointmentRepository, notifier webhook.Notifier) *AppointmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AppointmentService{logger: logger, repo: repo, notifier: notifier}
}

func (s *AppointmentService) Create(ctx context.Context, in AppointmentInput) (domain.Appointment, bool, error) {
	if s == nil || s.repo == nil || s.notifier == nil {
		return domain.Appointment{}, false, ErrAppointmentServiceNotConfigured
	}
	if err := validateAppointmentInput(&in); err != nil {
		return domain.Appointment{}, false, err
	}

	now := time.Now().UTC()
	appt := domain.Appointment{
		ID:           uuid.NewString(),
		PatientName:  in.PatientName,
		PatientPhone: in.PatientPhone,
		Doctor:       in.Doctor,
		Date:         in.Date,
		Time:         in.Time,
		Type:         in.Type,
		Status:       domain.AppointmentScheduled,
		Notes:        in.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, appt); err != nil {
		return domain.Appointment{}, false, err
	}

	notified := s.notify(ctx, ActionCreateAppointment, map[string]interface{}{"appointment": appt})
	return appt, notified, nil
}

func (s *AppointmentService) Update(ctx context.Context, id string, in AppointmentInput) (domain.Appointment, bool, error) {
	if s == nil || s.repo == nil || s.notifier == nil {
		return domain.Appointment{}, false, ErrAppointmentServiceNotConfigured
	}
	if err := validateAppointmentInput(&in); err != nil {
		return domain.Appointment{}, false, err
	}

	appt := domain.Appointment{
		ID:           id,
		PatientName:  in.PatientName,
		PatientPhone: in.PatientPhone,
		Doctor:       in.Doctor,
		Date:         in.Date,
		Time:         in.Time,
		Type:         in.Type,
		Notes:        in.Notes,
		UpdatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Update(ctx, appt); err != nil {
		return domain.Appointment{}, false, err
	}

	// Releemos la fila autoritativa: el update no toca status ni created_at.
	stored, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Warn("appointment read-back failed", zap.String("id", id), zap.Error(err))
	} else {
		appt = stored
	}

	notified := s.notify(ctx, ActionUpdateAppointment, map[string]interface{}{"appointment": appt})
	return appt, notified, nil
}

func (s *AppointmentService) ChangeStatus(ctx context.Context, id, status string) (bool, error) {
	if s == nil || s.repo == nil || s.notifier == nil {
		return false, ErrAppointmentServiceNotConfigured
	}
	status = strings.TrimSpace(status)
	if !domain.ValidAppointmentStatus(status) {
		return false, ErrAppointmentInvalidStatus
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return false, err
	}

	notified := s.notify(ctx, ActionUpdateAppointmentStatus, map[string]interface{}{
		"appointmentId": id,
		"newStatus":     status,
	})
	return notified, nil
}

func (s *AppointmentService) List(ctx context.Context) ([]domain.Appointment, error) {
	if s == nil || s.repo == nil {
		return nil, ErrAppointmentServiceNotConfigured
	}
	return s.repo.List(ctx)
}

// notify entrega best-effort al webhook; igual que el relay de chat, corre
// sobre un contexto desacoplado del request.
func (s *AppointmentService) notify(ctx context.Context, action string, fields map[string]interface{}) bool {
	if err := s.notifier.Notify(context.WithoutCancel(ctx), action, fields); err != nil {
		s.logger.Warn("appointment notify failed", zap.String("action", action), zap.Error(err))
		return false
	}
	return true
}

func validateAppointmentInput(in *AppointmentInput) error {
	in.PatientName = strings.TrimSpace(in.PatientName)
	in.PatientPhone = strings.TrimSpace(in.PatientPhone)
	in.Doctor = strings.TrimSpace(in.Doctor)
	in.Date = strings.TrimSpace(in.Date)
	in.Time = strings.TrimSpace(in.Time)
	in.Type = strings.TrimSpace(in.Type)
	in.Notes = strings.TrimSpace(in.Notes)

	if in.PatientName == "" || in.Doctor == "" || in.Date == "" || in.Time == "" {
		return ErrAppointmentInvalidInput
	}
	return nil
}
