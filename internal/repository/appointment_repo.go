package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"clinic-relay/internal/domain"
)

type AppointmentRepository interface {
	Create(ctx context.Context, appt domain.Appointment) error
	Update(ctx context.Context, appt domain.Appointment) error
	UpdateStatus(ctx context.Context, id, status string) error
	GetByID(ctx context.Context, id string) (domain.Appointment, error)
	List(ctx context.Context) ([]domain.Appointment, error)
}

type PgAppointmentRepository struct {
	pool *pgxpool.Pool
}

func NewPgAppointmentRepository(pool *pgxpool.Pool) *PgAppointmentRepository {
	return &PgAppointmentRepository{pool: pool}
}

func (r *PgAppointmentRepository) Create(ctx context.Context, appt domain.Appointment) error {
	const query = `
		INSERT INTO appointments
			(id, patient_name, patient_phone, doctor, date, time, type, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.pool.Exec(ctx, query,
		appt.ID,
		appt.PatientName,
		appt.PatientPhone,
		appt.Doctor,
		appt.Date,
		appt.Time,
		appt.Type,
		appt.Status,
		appt.Notes,
		appt.CreatedAt,
		appt.UpdatedAt,
	)
	return err
}

func (r *PgAppointmentRepository) Update(ctx context.Context, appt domain.Appointment) error {
	const query = `
		UPDATE appointments
		SET patient_name = $2, patient_phone = $3, doctor = $4, date = $5,
		    time = $6, type = $7, notes = $8, updated_at = $9
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		appt.ID,
		appt.PatientName,
		appt.PatientPhone,
		appt.Doctor,
		appt.Date,
		appt.Time,
		appt.Type,
		appt.Notes,
		appt.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgAppointmentRepository) UpdateStatus(ctx context.Context, id, status string) error {
	const query = `
		UPDATE appointments
		SET status = $2, updated_at = now()
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgAppointmentRepository) GetByID(ctx context.Context, id string) (domain.Appointment, error) {
	const query = `
		SELECT id, patient_name, patient_phone, doctor, date, time, type, status, notes, created_at, updated_at
		FROM appointments
		WHERE id = $1
	`
	var a domain.Appointment
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&a.ID,
		&a.PatientName,
		&a.PatientPhone,
		&a.Doctor,
		&a.Date,
		&a.Time,
		&a.Type,
		&a.Status,
		&a.Notes,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Appointment{}, err
	}
	return a, err
}

func (r *PgAppointmentRepository) List(ctx context.Context) ([]domain.Appointment, error) {
	const query = `
		SELECT id, patient_name, patient_phone, doctor, date, time, type, status, notes, created_at, updated_at
		FROM appointments
		ORDER BY date ASC, time ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appts []domain.Appointment
	for rows.Next() {
		var a domain.Appointment
		err = rows.Scan(
			&a.ID,
			&a.PatientName,
			&a.PatientPhone,
			&a.Doctor,
			&a.Date,
			&a.Time,
			&a.Type,
			&a.Status,
			&a.Notes,
			&a.CreatedAt,
			&a.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		appts = append(appts, a)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return appts, nil
}
