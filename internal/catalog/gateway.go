package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"bookhub/internal/metrics"
	"bookhub/internal/microservices/http-api/models"
	"bookhub/internal/shared"
)

const (
	DefaultSearchResults = 20
	MaxSearchResults     = 40

	// batchSize is how many ids GetMany looks up at once.
	batchSize = 10

	defaultLookupTimeout = 5 * time.Second
)

// VolumeSource is the raw catalog API. GoogleBooksClient implements it.
type VolumeSource interface {
	SearchVolumes(ctx context.Context, term string, maxResults int) (*VolumeListResponse, error)
	GetVolume(ctx context.Context, id string) (*Volume, error)
}

// Gateway turns catalog responses into Books.
type Gateway interface {
	Search(ctx context.Context, term string, maxResults int) ([]models.Book, error)
	GetByID(ctx context.Context, id string) (*models.Book, error)
	// GetMany returns one slot per id, nil where the lookup failed.
	GetMany(ctx context.Context, ids []string) []*models.Book
}

type gateway struct {
	source  VolumeSource
	cache   VolumeCache
	timeout time.Duration
	logger  zerolog.Logger
}

// NewGateway wraps source. cache may be nil. timeout bounds each upstream call.
func NewGateway(source VolumeSource, cache VolumeCache, timeout time.Duration, logger zerolog.Logger) Gateway {
	if timeout <= 0 {
		timeout = defaultLookupTimeout
	}
	if cache == nil {
		cache = (*RedisVolumeCache)(nil)
	}
	return &gateway{source: source, cache: cache, timeout: timeout, logger: logger}
}

func (g *gateway) Search(ctx context.Context, term string, maxResults int) ([]models.Book, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, shared.Validation("search term is required")
	}
	if maxResults <= 0 {
		maxResults = DefaultSearchResults
	}
	if maxResults > MaxSearchResults {
		maxResults = MaxSearchResults
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.source.SearchVolumes(ctx, term, maxResults)
	if err != nil {
		return nil, shared.Upstream("catalog search failed", err)
	}

	volumes := dedupeByTitle(resp.Items)
	books := make([]models.Book, 0, len(volumes))
	for _, v := range volumes {
		books = append(books, v.ToBook())
	}
	return books, nil
}

func (g *gateway) GetByID(ctx context.Context, id string) (*models.Book, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, shared.Validation("book id is required")
	}

	if v, ok := g.cache.Get(ctx, id); ok {
		b := v.ToBook()
		return &b, nil
	}

	lookupCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	v, err := g.source.GetVolume(lookupCtx, id)
	if err != nil {
		return nil, classifyLookupError(id, err)
	}

	g.cache.Set(ctx, v)
	b := v.ToBook()
	return &b, nil
}

func (g *gateway) GetMany(ctx context.Context, ids []string) []*models.Book {
	out := make([]*models.Book, len(ids))

	for start := 0; start < len(ids); start += batchSize {
		end := start + batchSize
		if end > len(ids) {
			end = len(ids)
		}

		var eg errgroup.Group
		for i := start; i < end; i++ {
			i := i
			eg.Go(func() error {
				b, err := g.GetByID(ctx, ids[i])
				if err != nil {
					metrics.MaskedFailuresTotal.WithLabelValues("catalog").Inc()
					g.logger.Warn().Err(err).Str("book_id", ids[i]).Msg("skipping book in batch lookup")
					return nil
				}
				out[i] = b
				return nil
			})
		}
		_ = eg.Wait()
	}

	return out
}

// classifyLookupError maps a lookup failure to an error kind. A non-2xx
// answer means the id is unknown; anything else is an upstream problem.
func classifyLookupError(id string, err error) error {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return shared.NotFound("book " + id + " not found")
	}
	return shared.Upstream("catalog lookup failed", err)
}

// dedupeByTitle collapses volumes sharing a normalized title. The survivor
// has the higher average rating, then the higher ratings count, and takes
// the position of the first occurrence. Untitled volumes are dropped.
func dedupeByTitle(items []Volume) []Volume {
	index := make(map[string]int, len(items))
	out := make([]Volume, 0, len(items))

	for _, v := range items {
		key := v.dedupeKey()
		if key == "" {
			continue
		}
		if i, seen := index[key]; seen {
			if ranksAbove(v, out[i]) {
				out[i] = v
			}
			continue
		}
		index[key] = len(out)
		out = append(out, v)
	}
	return out
}

func ranksAbove(a, b Volume) bool {
	if a.VolumeInfo.AverageRating != b.VolumeInfo.AverageRating {
		return a.VolumeInfo.AverageRating > b.VolumeInfo.AverageRating
	}
	return a.VolumeInfo.RatingsCount > b.VolumeInfo.RatingsCount
}
