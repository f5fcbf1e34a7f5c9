package application

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/wander-api/wander/internal/domain/entity"
	"github.com/wander-api/wander/internal/domain/repository"
	"github.com/wander-api/wander/pkg/apperr"
	"github.com/wander-api/wander/pkg/helpers"
)

const tourListCacheKey = "tours:list"
const tourListCacheTTL = time.Minute

// TourService is the catalog CRUD layer. The list endpoint is redis-cached;
// mutations evict the cache and re-index the tour in Elasticsearch.
type TourService struct {
	Tours   repository.TourRepository
	Redis   *redis.Client
	ES      *elasticsearch.Client
	ESIndex string
	Logger  *logrus.Logger
}

func NewTourService(tours repository.TourRepository, rdb *redis.Client, es *elasticsearch.Client, esIndex string, logger *logrus.Logger) *TourService {
	return &TourService{Tours: tours, Redis: rdb, ES: es, ESIndex: esIndex, Logger: logger}
}

func (s *TourService) List(ctx context.Context) ([]*entity.Tour, error) {
	if s.Redis != nil {
		var cached []*entity.Tour
		if ok, err := helpers.RedisGetJSON(ctx, s.Redis, tourListCacheKey, &cached); err == nil && ok {
			return cached, nil
		}
	}
	tours, err := s.Tours.List(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDependency, "could not list tours", err)
	}
	if s.Redis != nil {
		if err := helpers.RedisSetJSON(ctx, s.Redis, tourListCacheKey, tours, tourListCacheTTL); err != nil {
			s.Logger.WithError(err).Warn("tour list cache write failed")
		}
	}
	return tours, nil
}

func (s *TourService) Get(ctx context.Context, id string) (*entity.Tour, error) {
	t, err := s.Tours.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "tour not found")
		}
		return nil, apperr.Wrap(apperr.KindDependency, "tour unavailable", err)
	}
	return t, nil
}

func (s *TourService) Create(ctx context.Context, t *entity.Tour) error {
	if err := s.Tours.Create(ctx, t); err != nil {
		return apperr.Wrap(apperr.KindDependency, "could not create tour", err)
	}
	s.evictListCache(ctx)
	_ = s.indexTour(ctx, t)
	return nil
}

func (s *TourService) Update(ctx context.Context, t *entity.Tour) error {
	if err := s.Tours.Update(ctx, t); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.New(apperr.KindNotFound, "tour not found")
		}
		return apperr.Wrap(apperr.KindDependency, "could not update tour", err)
	}
	s.evictListCache(ctx)
	_ = s.indexTour(ctx, t)
	return nil
}

func (s *TourService) Delete(ctx context.Context, id string) error {
	if err := s.Tours.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.New(apperr.KindNotFound, "tour not found")
		}
		return apperr.Wrap(apperr.KindDependency, "could not delete tour", err)
	}
	s.evictListCache(ctx)
	s.deleteFromIndex(ctx, id)
	return nil
}

func (s *TourService) evictListCache(ctx context.Context) {
	if s.Redis == nil {
		return
	}
	if err := helpers.RedisDel(ctx, s.Redis, tourListCacheKey); err != nil {
		s.Logger.WithError(err).Warn("tour list cache evict failed")
	}
}

func (s *TourService) indexTour(ctx context.Context, t *entity.Tour) error {
	if s.ES == nil || s.ESIndex == "" {
		return nil
	}
	b, _ := json.Marshal(t)
	req := esapi.IndexRequest{Index: s.ESIndex, DocumentID: t.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("tour_id", t.ID).Warn("es index failed")
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		s.Logger.WithField("status", res.Status()).WithField("tour_id", t.ID).Warn("es index response error")
	}
	return nil
}

func (s *TourService) deleteFromIndex(ctx context.Context, id string) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESIndex, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("tour_id", id).Warn("es delete failed")
		return
	}
	_ = res.Body.Close()
}

// Search performs a multi_match query over name, summary and description.
func (s *TourService) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"name^2", "summary", "description"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(s.ES.Search.WithContext(c), s.ES.Search.WithIndex(s.ESIndex), s.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDependency, "search unavailable", err)
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, apperr.Wrap(apperr.KindDependency, "search unavailable", err)
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
