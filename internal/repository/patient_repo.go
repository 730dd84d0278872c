package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"clinic-relay/internal/domain"
)

// PatientRepository define el contrato de persistencia para pacientes.
type PatientRepository interface {
	Create(ctx context.Context, patient domain.Patient) (domain.Patient, error)
	Update(ctx context.Context, patient domain.Patient) error
	Delete(ctx context.Context, id int64) error
	GetByPhone(ctx context.Context, phone string) (domain.Patient, error)
	List(ctx context.Context) ([]domain.Patient, error)
}

// PgPatientRepository implementa PatientRepository usando pgxpool.
type PgPatientRepository struct {
	pool *pgxpool.Pool
}

func NewPgPatientRepository(pool *pgxpool.Pool) *PgPatientRepository {
	return &PgPatientRepository{pool: pool}
}

func (r *PgPatientRepository) Create(ctx context.Context, patient domain.Patient) (domain.Patient, error) {
	const query = `
		INSERT INTO patients (name, phone, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := r.pool.QueryRow(ctx, query,
		patient.Name,
		patient.Phone,
		patient.CreatedAt,
	).Scan(&patient.ID)
	return patient, err
}

func (r *PgPatientRepository) Update(ctx context.Context, patient domain.Patient) error {
	const query = `
		UPDATE patients
		SET name = $2, phone = $3
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, patient.ID, patient.Name, patient.Phone)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgPatientRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM patients WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgPatientRepository) GetByPhone(ctx context.Context, phone string) (domain.Patient, error) {
	const query = `
		SELECT id, name, phone, created_at
		FROM patients
		WHERE phone = $1
	`
	var p domain.Patient
	err := r.pool.QueryRow(ctx, query, phone).Scan(
		&p.ID,
		&p.Name,
		&p.Phone,
		&p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Patient{}, err
	}
	return p, err
}

func (r *PgPatientRepository) List(ctx context.Context) ([]domain.Patient, error) {
	const query = `
		SELECT id, name, phone, created_at
		FROM patients
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var patients []domain.Patient
	for rows.Next() {
		var p domain.Patient
		if err = rows.Scan(&p.ID, &p.Name, &p.Phone, &p.CreatedAt); err != nil {
			return nil, err
		}
		patients = append(patients, p)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return patients, nil
}
