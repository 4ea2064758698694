package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"theater/internal/config"
	"theater/internal/models"
)

// PlayDocument is the indexed form of a play
type PlayDocument struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Genres      []string  `json:"genres"`
	Actors      []string  `json:"actors"`
	IndexedAt   time.Time `json:"indexed_at"`
}

func NewPlayDocument(p models.Play) PlayDocument {
	return PlayDocument{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Genres:      p.GenreNames(),
		Actors:      p.ActorNames(),
		IndexedAt:   time.Now().UTC(),
	}
}

// ElasticsearchClient представляет клиент для полнотекстового поиска по спектаклям
type ElasticsearchClient struct {
	client *elasticsearch.Client
	config config.ElasticsearchConfig
}

// NewElasticsearchClient создает клиент и индекс, если его нет
func NewElasticsearchClient(cfg config.ElasticsearchConfig) (*ElasticsearchClient, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     []string{cfg.URL},
		Username:      cfg.Username,
		Password:      cfg.Password,
		RetryOnStatus: []int{502, 503, 504, 429},
		MaxRetries:    cfg.MaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	client := &ElasticsearchClient{
		client: es,
		config: cfg,
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	if err := client.ensureIndex(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure index exists: %w", err)
	}

	return client, nil
}

var playsMapping = map[string]interface{}{
	"settings": map[string]interface{}{
		"number_of_shards":   1,
		"number_of_replicas": 0,
	},
	"mappings": map[string]interface{}{
		"properties": map[string]interface{}{
			"id": map[string]interface{}{"type": "long"},
			"title": map[string]interface{}{
				"type":     "text",
				"analyzer": "english",
				"fields": map[string]interface{}{
					"keyword": map[string]interface{}{"type": "keyword", "ignore_above": 256},
				},
			},
			"description": map[string]interface{}{"type": "text", "analyzer": "english"},
			"genres":      map[string]interface{}{"type": "keyword"},
			"actors":      map[string]interface{}{"type": "text"},
			"indexed_at":  map[string]interface{}{"type": "date"},
		},
	},
}

// ensureIndex создает индекс если он не существует
func (c *ElasticsearchClient) ensureIndex(ctx context.Context) error {
	req := esapi.IndicesExistsRequest{
		Index: []string{c.config.Index},
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		slog.Info("Elasticsearch index already exists", "index", c.config.Index)
		return nil
	}

	body, err := json.Marshal(playsMapping)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	createReq := esapi.IndicesCreateRequest{
		Index: c.config.Index,
		Body:  bytes.NewReader(body),
	}

	createRes, err := createReq.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		return fmt.Errorf("failed to create index: %s", createRes.String())
	}

	slog.Info("Created Elasticsearch index", "index", c.config.Index)
	return nil
}

func buildSearchQuery(query string, limit int) map[string]interface{} {
	if limit <= 0 {
		limit = 10
	}
	return map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"title^3", "description", "actors", "genres"},
				"fuzziness": "AUTO",
			},
		},
		"sort": []map[string]interface{}{
			{"_score": map[string]interface{}{"order": "desc"}},
			{"id": map[string]interface{}{"order": "asc"}},
		},
		"size": limit,
	}
}

// SearchPlays ищет спектакли по названию, описанию, актерам и жанрам
func (c *ElasticsearchClient) SearchPlays(ctx context.Context, query string, limit int) ([]models.PlaySearchHit, error) {
	body, err := json.Marshal(buildSearchQuery(query, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{c.config.Index},
		Body:  bytes.NewReader(body),
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search error: %s", res.String())
	}

	var response struct {
		Hits struct {
			Hits []struct {
				Score  float64      `json:"_score"`
				Source PlayDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	hits := make([]models.PlaySearchHit, len(response.Hits.Hits))
	for i, h := range response.Hits.Hits {
		hits[i] = models.PlaySearchHit{
			ID:          h.Source.ID,
			Title:       h.Source.Title,
			Description: h.Source.Description,
			Genres:      h.Source.Genres,
			Actors:      h.Source.Actors,
			Score:       h.Score,
		}
	}
	return hits, nil
}

// IndexPlay индексирует или переиндексирует спектакль
func (c *ElasticsearchClient) IndexPlay(ctx context.Context, play models.Play) error {
	body, err := json.Marshal(NewPlayDocument(play))
	if err != nil {
		return fmt.Errorf("failed to marshal play: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      c.config.Index,
		DocumentID: strconv.FormatInt(play.ID, 10),
		Body:       bytes.NewReader(body),
		Refresh:    "wait_for",
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to index play: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("indexing error: %s", res.String())
	}

	return nil
}

// DeletePlay удаляет спектакль из индекса; отсутствие документа не ошибка
func (c *ElasticsearchClient) DeletePlay(ctx context.Context, id int64) error {
	req := esapi.DeleteRequest{
		Index:      c.config.Index,
		DocumentID: strconv.FormatInt(id, 10),
		Refresh:    "wait_for",
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to delete play: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete error: %s", res.String())
	}

	return nil
}

// Count возвращает количество проиндексированных спектаклей
func (c *ElasticsearchClient) Count(ctx context.Context) (int64, error) {
	req := esapi.CountRequest{
		Index: []string{c.config.Index},
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return 0, fmt.Errorf("failed to execute count: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, fmt.Errorf("count error: %s", res.String())
	}

	var response struct {
		Count int64 `json:"count"`
	}

	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return 0, fmt.Errorf("failed to decode count response: %w", err)
	}

	return response.Count, nil
}

// HealthCheck проверяет состояние Elasticsearch
func (c *ElasticsearchClient) HealthCheck(ctx context.Context) error {
	req := esapi.ClusterHealthRequest{
		WaitForStatus: "yellow",
		Timeout:       10 * time.Second,
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("health check error: %s", res.String())
	}

	return nil
}
