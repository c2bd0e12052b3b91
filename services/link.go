package services

import (
	"context"
	"fmt"
	"strings"

	"shrnq/repository"
	"shrnq/util"

	"go.uber.org/zap"
)

type ILinkService interface {
	Allocate(ctx context.Context) (string, error)
	Shorten(ctx context.Context, url string) (string, error)
	Resolve(ctx context.Context, path string) (string, error)
	ShortURL(baseURL, slug string) string
}

type LinkService struct {
	kv          repository.IKVRepository
	maxAttempts int
	generate    func() (string, error)
	logger      *zap.Logger
}

func NewLinkService(kv repository.IKVRepository, maxAttempts int, logger *zap.Logger) *LinkService {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &LinkService{kv: kv, maxAttempts: maxAttempts, generate: util.GenerateSlug, logger: logger}
}

// Allocate returns a slug that had no value at the time it was checked. Another
// request may still take it before the caller writes; use Shorten to reserve
// and write in one step.
func (s *LinkService) Allocate(ctx context.Context) (string, error) {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		slug, err := s.generate()
		if err != nil {
			return "", fmt.Errorf("generate slug: %w", err)
		}
		_, exists, err := s.kv.Get(ctx, slug)
		if err != nil {
			return "", fmt.Errorf("lookup slug %s: %w", slug, err)
		}
		if !exists {
			return slug, nil
		}
		s.logger.Debug("slug collision", zap.String("slug", slug), zap.Int("attempt", attempt))
	}
	return "", ErrAllocationExhausted
}

// Shorten stores url under a fresh slug. The write is conditional so two
// concurrent requests can never end up sharing a slug.
func (s *LinkService) Shorten(ctx context.Context, url string) (string, error) {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		slug, err := s.generate()
		if err != nil {
			return "", fmt.Errorf("generate slug: %w", err)
		}
		written, err := s.kv.PutIfAbsent(ctx, slug, url)
		if err != nil {
			return "", fmt.Errorf("store slug %s: %w", slug, err)
		}
		if written {
			return slug, nil
		}
		s.logger.Debug("slug collision", zap.String("slug", slug), zap.Int("attempt", attempt))
	}
	s.logger.Warn("slug allocation exhausted", zap.Int("attempts", s.maxAttempts))
	return "", ErrAllocationExhausted
}

// Resolve looks up the destination for a request path such as "/k3Xp9".
func (s *LinkService) Resolve(ctx context.Context, path string) (string, error) {
	key := strings.TrimPrefix(path, "/")
	if key == "" {
		return "", ErrLinkNotFound
	}
	target, found, err := s.kv.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("lookup slug %s: %w", key, err)
	}
	if !found {
		return "", ErrLinkNotFound
	}
	return target, nil
}

// ShortURL renders the short link the way it is shown to users: host and
// slug, without the scheme.
func (s *LinkService) ShortURL(baseURL, slug string) string {
	if i := strings.Index(baseURL, "://"); i >= 0 {
		baseURL = baseURL[i+3:]
	}
	return strings.TrimRight(baseURL, "/") + "/" + slug
}
