package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"theater/internal/database"
	"theater/internal/models"
)

type ActorRepository struct {
	db *database.DB
}

func NewActorRepository(db *database.DB) *ActorRepository {
	return &ActorRepository{db: db}
}

func scanActors(rows *sql.Rows) ([]models.Actor, error) {
	defer rows.Close()

	actors := []models.Actor{}
	for rows.Next() {
		var a models.Actor
		if err := rows.Scan(&a.ID, &a.FirstName, &a.LastName); err != nil {
			return nil, err
		}
		actors = append(actors, a)
	}
	return actors, rows.Err()
}

// List returns actors ordered by first name
func (r *ActorRepository) List(ctx context.Context) ([]models.Actor, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, first_name, last_name FROM actors ORDER BY first_name, id`)
	if err != nil {
		return nil, err
	}
	return scanActors(rows)
}

func (r *ActorRepository) GetByIDs(ctx context.Context, ids []int64) ([]models.Actor, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, first_name, last_name FROM actors WHERE id = ANY($1) ORDER BY first_name, id`,
		pq.Array(ids))
	if err != nil {
		return nil, err
	}
	return scanActors(rows)
}

func (r *ActorRepository) GetByID(ctx context.Context, id int64) (*models.Actor, error) {
	a := &models.Actor{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, first_name, last_name FROM actors WHERE id = $1`, id,
	).Scan(&a.ID, &a.FirstName, &a.LastName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

func (r *ActorRepository) Create(ctx context.Context, actor *models.Actor) error {
	return r.db.QueryRowContext(ctx,
		`INSERT INTO actors (first_name, last_name) VALUES ($1, $2) RETURNING id`,
		actor.FirstName, actor.LastName,
	).Scan(&actor.ID)
}

func (r *ActorRepository) Update(ctx context.Context, actor *models.Actor) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE actors SET first_name = $1, last_name = $2 WHERE id = $3`,
		actor.FirstName, actor.LastName, actor.ID)
	if err != nil {
		return false, err
	}
	return affected(res)
}

func (r *ActorRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM actors WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return affected(res)
}
