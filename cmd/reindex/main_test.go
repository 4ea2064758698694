package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"theater/internal/models"
)

type listedPlays []models.Play

func (p listedPlays) List(ctx context.Context, genres []string) ([]models.Play, error) {
	return p, nil
}

type recordingIndex struct {
	ids    []int64
	failOn int64
}

func (r *recordingIndex) IndexPlay(ctx context.Context, play models.Play) error {
	if play.ID == r.failOn {
		return errors.New("mapping conflict")
	}
	r.ids = append(r.ids, play.ID)
	return nil
}

func TestReindexAll(t *testing.T) {
	index := &recordingIndex{}

	n, err := reindexAll(context.Background(), listedPlays{{ID: 1}, {ID: 2}, {ID: 3}}, index)

	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []int64{1, 2, 3}, index.ids)
}

func TestReindexAllContinuesPastFailures(t *testing.T) {
	index := &recordingIndex{failOn: 2}

	n, err := reindexAll(context.Background(), listedPlays{{ID: 1}, {ID: 2}, {ID: 3}}, index)

	assert.EqualError(t, err, "1 of 3 plays failed to index")
	assert.Equal(t, 2, n)
	assert.Equal(t, []int64{1, 3}, index.ids)
}
