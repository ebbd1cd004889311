package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"lifeledger/pkg/platform/sentinel"
	txcontext "lifeledger/pkg/platform/tx"
)

// PostgresStore persists people and objects. Id sequences live in the
// database (BIGSERIAL) so they stay monotonic across restarts.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbRunner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) runner(ctx context.Context) dbRunner {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) CreatePerson(ctx context.Context, person *Person) error {
	err := s.runner(ctx).QueryRowContext(ctx, `
		INSERT INTO people
			(name, birth_date, father_id, mother_id, gender, occupation,
			 partner_id, mood_status, health_status, schooling, image_ref,
			 holder_account, custody_generation)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`,
		person.Name, person.BirthDate, person.FatherID, person.MotherID,
		person.Gender, person.Occupation, person.PartnerID, person.MoodStatus,
		person.HealthStatus, person.Schooling, person.ImageRef,
		person.HolderAccount, person.CustodyGeneration,
	).Scan(&person.ID)
	if err != nil {
		return fmt.Errorf("insert person: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetPerson(ctx context.Context, id uint64) (*Person, error) {
	person := Person{}
	err := s.runner(ctx).QueryRowContext(ctx, `
		SELECT id, name, birth_date, father_id, mother_id, gender, occupation,
		       partner_id, mood_status, health_status, schooling, image_ref,
		       holder_account, custody_generation
		FROM people WHERE id = $1`, id,
	).Scan(&person.ID, &person.Name, &person.BirthDate, &person.FatherID,
		&person.MotherID, &person.Gender, &person.Occupation, &person.PartnerID,
		&person.MoodStatus, &person.HealthStatus, &person.Schooling,
		&person.ImageRef, &person.HolderAccount, &person.CustodyGeneration)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select person: %w", err)
	}
	return &person, nil
}

func (s *PostgresStore) PutPerson(ctx context.Context, person *Person) error {
	result, err := s.runner(ctx).ExecContext(ctx, `
		UPDATE people SET
			name = $2, gender = $3, occupation = $4, partner_id = $5,
			mood_status = $6, health_status = $7, schooling = $8, image_ref = $9,
			custody_generation = $10
		WHERE id = $1`,
		person.ID, person.Name, person.Gender, person.Occupation,
		person.PartnerID, person.MoodStatus, person.HealthStatus,
		person.Schooling, person.ImageRef, person.CustodyGeneration,
	)
	if err != nil {
		return fmt.Errorf("update person: %w", err)
	}
	return requireRow(result)
}

func (s *PostgresStore) CreateObject(ctx context.Context, object *Object) error {
	err := s.runner(ctx).QueryRowContext(ctx, `
		INSERT INTO objects
			(type_name, mortgaged, rent_allowed, daily_rent_price,
			 rent_occupant_id, image_ref, holder_account, custody_generation)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		object.TypeName, object.Mortgaged, object.RentAllowed,
		object.DailyRentPrice, object.RentOccupantID, object.ImageRef,
		object.HolderAccount, object.CustodyGeneration,
	).Scan(&object.ID)
	if err != nil {
		return fmt.Errorf("insert object: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetObject(ctx context.Context, id uint64) (*Object, error) {
	object := Object{}
	err := s.runner(ctx).QueryRowContext(ctx, `
		SELECT id, type_name, mortgaged, rent_allowed, daily_rent_price,
		       rent_occupant_id, image_ref, holder_account, custody_generation
		FROM objects WHERE id = $1`, id,
	).Scan(&object.ID, &object.TypeName, &object.Mortgaged, &object.RentAllowed,
		&object.DailyRentPrice, &object.RentOccupantID, &object.ImageRef,
		&object.HolderAccount, &object.CustodyGeneration)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select object: %w", err)
	}
	return &object, nil
}

func (s *PostgresStore) PutObject(ctx context.Context, object *Object) error {
	result, err := s.runner(ctx).ExecContext(ctx, `
		UPDATE objects SET
			mortgaged = $2, rent_allowed = $3, daily_rent_price = $4,
			rent_occupant_id = $5, image_ref = $6, custody_generation = $7
		WHERE id = $1`,
		object.ID, object.Mortgaged, object.RentAllowed,
		object.DailyRentPrice, object.RentOccupantID, object.ImageRef,
		object.CustodyGeneration,
	)
	if err != nil {
		return fmt.Errorf("update object: %w", err)
	}
	return requireRow(result)
}

func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
