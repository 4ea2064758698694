package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"theater/internal/apperrors"
	"theater/internal/database"
	"theater/internal/models"
)

type GenreRepository struct {
	db *database.DB
}

func NewGenreRepository(db *database.DB) *GenreRepository {
	return &GenreRepository{db: db}
}

func (r *GenreRepository) List(ctx context.Context) ([]models.Genre, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM genres ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	genres := []models.Genre{}
	for rows.Next() {
		var g models.Genre
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, err
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}

func (r *GenreRepository) GetByID(ctx context.Context, id int64) (*models.Genre, error) {
	g := &models.Genre{}
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM genres WHERE id = $1`, id).Scan(&g.ID, &g.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return g, err
}

// GetByNames returns the genres whose name exactly matches one of names
func (r *GenreRepository) GetByNames(ctx context.Context, names []string) ([]models.Genre, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name FROM genres WHERE name = ANY($1) ORDER BY id`, pq.Array(names))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var genres []models.Genre
	for rows.Next() {
		var g models.Genre
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, err
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}

func (r *GenreRepository) Create(ctx context.Context, genre *models.Genre) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO genres (name) VALUES ($1) RETURNING id`, genre.Name).Scan(&genre.ID)
	if isUniqueViolation(err, "") {
		return apperrors.NewFieldError("name", "genre with this name already exists.")
	}
	return err
}

func (r *GenreRepository) Update(ctx context.Context, genre *models.Genre) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE genres SET name = $1 WHERE id = $2`, genre.Name, genre.ID)
	if isUniqueViolation(err, "") {
		return false, apperrors.NewFieldError("name", "genre with this name already exists.")
	}
	if err != nil {
		return false, err
	}
	return affected(res)
}

func (r *GenreRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM genres WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return affected(res)
}
