package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"theater/internal/database"
	"theater/internal/models"
)

type PlayRepository struct {
	db *database.DB
}

func NewPlayRepository(db *database.DB) *PlayRepository {
	return &PlayRepository{db: db}
}

// List returns plays that carry every genre in genres (case-insensitive exact
// name match). An empty genres slice returns all plays.
func (r *PlayRepository) List(ctx context.Context, genres []string) ([]models.Play, error) {
	var (
		conditions []string
		args       []any
	)
	for _, name := range genres {
		args = append(args, name)
		conditions = append(conditions, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM play_genres pg
			JOIN genres g ON g.id = pg.genre_id
			WHERE pg.play_id = p.id AND LOWER(g.name) = LOWER($%d))`, len(args)))
	}

	query := `SELECT p.id, p.title, p.description FROM plays p`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, ` AND `)
	}
	query += ` ORDER BY p.id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	plays := []models.Play{}
	for rows.Next() {
		var p models.Play
		if err := rows.Scan(&p.ID, &p.Title, &p.Description); err != nil {
			rows.Close()
			return nil, err
		}
		plays = append(plays, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadRelations(ctx, plays); err != nil {
		return nil, err
	}
	return plays, nil
}

func (r *PlayRepository) GetByID(ctx context.Context, id int64) (*models.Play, error) {
	p := models.Play{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, description FROM plays WHERE id = $1`, id,
	).Scan(&p.ID, &p.Title, &p.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	plays := []models.Play{p}
	if err := r.loadRelations(ctx, plays); err != nil {
		return nil, err
	}
	return &plays[0], nil
}

// loadRelations fills Genres and Actors of every play with two queries
func (r *PlayRepository) loadRelations(ctx context.Context, plays []models.Play) error {
	if len(plays) == 0 {
		return nil
	}

	ids := make([]int64, len(plays))
	index := make(map[int64]int, len(plays))
	for i := range plays {
		ids[i] = plays[i].ID
		index[plays[i].ID] = i
		plays[i].Genres = []models.Genre{}
		plays[i].Actors = []models.Actor{}
	}

	genreRows, err := r.db.QueryContext(ctx, `
		SELECT pg.play_id, g.id, g.name
		FROM play_genres pg
		JOIN genres g ON g.id = pg.genre_id
		WHERE pg.play_id = ANY($1)
		ORDER BY g.name`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load play genres: %w", err)
	}
	defer genreRows.Close()

	for genreRows.Next() {
		var playID int64
		var g models.Genre
		if err := genreRows.Scan(&playID, &g.ID, &g.Name); err != nil {
			return err
		}
		i := index[playID]
		plays[i].Genres = append(plays[i].Genres, g)
	}
	if err := genreRows.Err(); err != nil {
		return err
	}

	actorRows, err := r.db.QueryContext(ctx, `
		SELECT pa.play_id, a.id, a.first_name, a.last_name
		FROM play_actors pa
		JOIN actors a ON a.id = pa.actor_id
		WHERE pa.play_id = ANY($1)
		ORDER BY a.first_name, a.last_name`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load play actors: %w", err)
	}
	defer actorRows.Close()

	for actorRows.Next() {
		var playID int64
		var a models.Actor
		if err := actorRows.Scan(&playID, &a.ID, &a.FirstName, &a.LastName); err != nil {
			return err
		}
		i := index[playID]
		plays[i].Actors = append(plays[i].Actors, a)
	}
	return actorRows.Err()
}

// Create inserts the play and its genre/actor links in one transaction
func (r *PlayRepository) Create(ctx context.Context, play *models.Play) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`INSERT INTO plays (title, description) VALUES ($1, $2) RETURNING id`,
			play.Title, play.Description,
		).Scan(&play.ID)
		if err != nil {
			return fmt.Errorf("failed to insert play: %w", err)
		}
		return setPlayRelations(ctx, tx, play)
	})
}

// Update replaces the play row and its genre/actor links
func (r *PlayRepository) Update(ctx context.Context, play *models.Play) (bool, error) {
	found := false
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE plays SET title = $1, description = $2 WHERE id = $3`,
			play.Title, play.Description, play.ID)
		if err != nil {
			return fmt.Errorf("failed to update play: %w", err)
		}
		if found, err = affected(res); err != nil || !found {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM play_genres WHERE play_id = $1`, play.ID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM play_actors WHERE play_id = $1`, play.ID); err != nil {
			return err
		}
		return setPlayRelations(ctx, tx, play)
	})
	return found, err
}

func setPlayRelations(ctx context.Context, tx querier, play *models.Play) error {
	if len(play.Genres) > 0 {
		ids := make([]int64, len(play.Genres))
		for i, g := range play.Genres {
			ids[i] = g.ID
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO play_genres (play_id, genre_id) SELECT $1, UNNEST($2::bigint[])`,
			play.ID, pq.Array(ids)); err != nil {
			return fmt.Errorf("failed to link genres: %w", err)
		}
	}

	if len(play.Actors) > 0 {
		ids := make([]int64, len(play.Actors))
		for i, a := range play.Actors {
			ids[i] = a.ID
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO play_actors (play_id, actor_id) SELECT $1, UNNEST($2::bigint[])`,
			play.ID, pq.Array(ids)); err != nil {
			return fmt.Errorf("failed to link actors: %w", err)
		}
	}
	return nil
}

func (r *PlayRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM plays WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return affected(res)
}

// WeekMostPopular returns the play with the most tickets across performances
// shown at or after since. Ties go to the lowest play id. Returns nil when no
// ticket qualifies.
func (r *PlayRepository) WeekMostPopular(ctx context.Context, since time.Time) (*models.PlayRef, error) {
	ref := &models.PlayRef{}
	err := r.db.QueryRowContext(ctx, `
		SELECT p.id, p.title
		FROM plays p
		JOIN performances pf ON pf.play_id = p.id
		JOIN tickets t ON t.performance_id = pf.id
		WHERE pf.show_time >= $1
		GROUP BY p.id, p.title
		ORDER BY COUNT(t.id) DESC, p.id ASC
		LIMIT 1`, since).Scan(&ref.ID, &ref.Title)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ref, nil
}
