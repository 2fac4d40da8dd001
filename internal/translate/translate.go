package translate

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/deusflow/footnews/internal/cache"
	"github.com/deusflow/footnews/internal/logger"
	"github.com/deusflow/footnews/internal/metrics"
	"github.com/deusflow/footnews/internal/news"
	"github.com/deusflow/footnews/internal/ratelimit"
)

const (
	DefaultMaxRunes = 1000
	defaultCacheTTL = 7 * 24 * time.Hour
	defaultTimeout  = 15 * time.Second
)

// Backend is one translation service.
type Backend interface {
	Name() string
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// Options configures a Translator. Zero values pick sensible defaults.
type Options struct {
	TargetLang string
	MaxRunes   int
	Timeout    time.Duration
	CacheTTL   time.Duration
	Cache      cache.Cache // optional

	// Limiter is optional and applies to every backend except google.
	Limiter *ratelimit.AIRateLimiter
}

// Translator tries its backends in order and falls back to the original text.
type Translator struct {
	opts     Options
	backends []Backend
}

func New(opts Options, backends ...Backend) *Translator {
	if opts.TargetLang == "" {
		opts.TargetLang = "uz"
	}
	if opts.MaxRunes <= 0 {
		opts.MaxRunes = DefaultMaxRunes
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}
	return &Translator{opts: opts, backends: backends}
}

// TargetLang is the ISO code posts are translated into.
func (t *Translator) TargetLang() string { return t.opts.TargetLang }

// Translate is best effort: on any failure it returns text unchanged.
func (t *Translator) Translate(ctx context.Context, text string) string {
	out, err := t.Try(ctx, text)
	if err != nil {
		var trErr *news.TranslationError
		if errors.As(err, &trErr) {
			metrics.Global.IncrementFailedTranslations()
		}
		logger.Warn("translation failed, using original", "error", err)
		return text
	}
	return out
}

// Try runs the backend chain and reports the last failure as *news.TranslationError.
// Empty input returns empty output without calling any backend.
func (t *Translator) Try(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	key := cache.Key(t.opts.TargetLang, text)
	if t.opts.Cache != nil {
		if cached, ok := t.opts.Cache.Get(ctx, key); ok {
			if t.opts.Limiter != nil {
				t.opts.Limiter.RecordCacheHit()
			}
			return cached, nil
		}
	}

	if len(t.backends) == 0 {
		return "", &news.TranslationError{Backend: "none", Err: errors.New("no translation backend configured")}
	}

	var lastErr error
	for _, b := range t.backends {
		out, err := t.call(ctx, b, text)
		if err != nil {
			lastErr = &news.TranslationError{Backend: b.Name(), Err: err}
			logger.Debug("translation backend failed", "backend", b.Name(), "error", err)
			if ctx.Err() != nil {
				break
			}
			continue
		}

		out = news.Truncate(out, t.opts.MaxRunes)
		if t.opts.Cache != nil {
			t.opts.Cache.Set(ctx, key, out, t.opts.CacheTTL)
		}
		metrics.Global.IncrementSuccessfulTranslations()
		return out, nil
	}

	return "", lastErr
}

func (t *Translator) call(ctx context.Context, b Backend, text string) (string, error) {
	if t.opts.Limiter != nil && b.Name() != googleBackendName {
		if err := t.opts.Limiter.Use(b.Name()); err != nil {
			return "", err
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, t.opts.Timeout)
	defer cancel()

	out, err := b.Translate(callCtx, text, t.opts.TargetLang)
	if err != nil {
		return "", err
	}
	if b.Name() != googleBackendName {
		out = SanitizeAIText(out)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", errors.New("empty translation")
	}
	return out, nil
}
