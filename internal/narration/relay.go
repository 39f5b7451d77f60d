package narration

import (
	"context"
	"fmt"
	"time"

	"github.com/Ayash-Bera/vbm-explorer/internal/metrics"
	"github.com/Ayash-Bera/vbm-explorer/internal/models"
	"github.com/sirupsen/logrus"
)

// Cache stores generated narrations. Get returns an error on a miss.
type Cache interface {
	GetNarration(ctx context.Context, key string) (string, error)
	SetNarration(ctx context.Context, key, text string, ttl time.Duration) error
}

type Options struct {
	Timeout   time.Duration
	MaxTokens int
	CacheTTL  time.Duration
}

type Relay struct {
	provider Provider
	cache    Cache
	logger   *logrus.Logger
	opts     Options
}

// NewRelay wraps provider. cache may be nil.
func NewRelay(provider Provider, cache Cache, logger *logrus.Logger, opts Options) *Relay {
	if provider == nil {
		provider = Unconfigured{}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Hour
	}
	return &Relay{provider: provider, cache: cache, logger: logger, opts: opts}
}

func (r *Relay) Provider() string {
	return r.provider.Name()
}

// Complete sends one request. Failures come back as *Error.
func (r *Relay) Complete(ctx context.Context, req Request) (string, error) {
	if len(req.Messages) == 0 {
		return "", AsError(ErrNoMessages)
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = r.opts.MaxTokens
	}

	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	start := time.Now()
	text, err := r.provider.Complete(ctx, req)
	elapsed := time.Since(start)
	metrics.NarrationDuration.WithLabelValues(r.provider.Name()).Observe(elapsed.Seconds())

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			err = fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
		}
		nerr := AsError(err)
		metrics.NarrationTotal.WithLabelValues(r.provider.Name(), "error").Inc()
		r.logger.WithFields(logrus.Fields{
			"provider": r.provider.Name(),
			"status":   nerr.Status,
			"duration": elapsed,
		}).WithError(err).Warn("Narration request failed")
		return "", nerr
	}

	metrics.NarrationTotal.WithLabelValues(r.provider.Name(), "ok").Inc()
	r.logger.WithFields(logrus.Fields{
		"provider": r.provider.Name(),
		"chars":    len(text),
		"duration": elapsed,
	}).Debug("Narration generated")
	return text, nil
}

// Describe narrates a confident match against its baseline. Replies are cached
// per analysis and normalised question.
func (r *Relay) Describe(ctx context.Context, question string, rec, baseline *models.AnalysisRecord) (string, error) {
	key := fmt.Sprintf("narration:%s:%s", rec.ID, normalizeQuestion(question))
	if text, ok := r.cached(ctx, key); ok {
		return text, nil
	}

	text, err := r.Complete(ctx, Request{
		System:   describeSystem,
		Messages: []Message{{Role: RoleUser, Content: describeFacts(question, rec, baseline)}},
	})
	if err != nil {
		return "", err
	}

	r.store(ctx, key, text)
	return text, nil
}

// Fallback explains that nothing matched and points at answerable questions.
func (r *Relay) Fallback(ctx context.Context, question string, intent models.QueryIntent) (string, error) {
	return r.Complete(ctx, Request{
		System:   fallbackSystem,
		Messages: []Message{{Role: RoleUser, Content: fallbackFacts(question, intent)}},
	})
}

func (r *Relay) cached(ctx context.Context, key string) (string, bool) {
	if r.cache == nil {
		return "", false
	}
	text, err := r.cache.GetNarration(ctx, key)
	if err != nil || text == "" {
		metrics.CacheMisses.WithLabelValues("narration").Inc()
		return "", false
	}
	metrics.CacheHits.WithLabelValues("narration").Inc()
	return text, true
}

func (r *Relay) store(ctx context.Context, key, text string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.SetNarration(ctx, key, text, r.opts.CacheTTL); err != nil {
		r.logger.WithError(err).Warn("Failed to cache narration")
	}
}
