package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"clinic-relay/internal/domain"
	"clinic-relay/internal/repository"
)

var (
	ErrPatientServiceNotConfigured = errors.New("patient service not configured")
	ErrPatientInvalidInput         = errors.New("patient name and phone are required")
)

// PatientService encapsula las altas y bajas de pacientes del dashboard.
type PatientService struct {
	repo repository.PatientRepository
}

func NewPatientService(repo repository.PatientRepository) *PatientService {
	return &PatientService{repo: repo}
}

func (s *PatientService) Create(ctx context.Context, name, phone string) (domain.Patient, error) {
	if s == nil || s.repo == nil {
		return domain.Patient{}, ErrPatientServiceNotConfigured
	}

	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	if name == "" || phone == "" {
		return domain.Patient{}, ErrPatientInvalidInput
	}

	return s.repo.Create(ctx, domain.Patient{
		Name:      name,
		Phone:     phone,
		CreatedAt: time.Now().UTC(),
	})
}

func (s *PatientService) Update(ctx context.Context, id int64, name, phone string) error {
	if s == nil || s.repo == nil {
		return ErrPatientServiceNotConfigured
	}

	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	if name == "" || phone == "" {
		return ErrPatientInvalidInput
	}

	return s.repo.Update(ctx, domain.Patient{ID: id, Name: name, Phone: phone})
}

func (s *PatientService) Delete(ctx context.Context, id int64) error {
	if s == nil || s.repo == nil {
		return ErrPatientServiceNotConfigured
	}
	return s.repo.Delete(ctx, id)
}

// GetByPhone resuelve el paciente detrás de una sesión de chat: el
// session_id de WhatsApp es el teléfono.
func (s *PatientService) GetByPhone(ctx context.Context, phone string) (domain.Patient, error) {
	if s == nil || s.repo == nil {
		return domain.Patient{}, ErrPatientServiceNotConfigured
	}
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return domain.Patient{}, ErrPatientInvalidInput
	}
	return s.repo.GetByPhone(ctx, phone)
}

func (s *PatientService) List(ctx context.Context) ([]domain.Patient, error) {
	if s == nil || s.repo == nil {
		return nil, ErrPatientServiceNotConfigured
	}
	return s.repo.List(ctx)
}
