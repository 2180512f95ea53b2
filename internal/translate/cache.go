package translate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// cachedTranslator is a read-through cache in front of the real
// translator. Caching is an optimization only: cache failures degrade to a
// plain translation call.
type cachedTranslator struct {
	next Translator
	rdb  *redis.Client
	ttl  time.Duration
	log  *zap.Logger
}

func WithCache(next Translator, rdb *redis.Client, ttl time.Duration, log *zap.Logger) Translator {
	return &cachedTranslator{
		next: next,
		rdb:  rdb,
		ttl:  ttl,
		log:  log.Named("translate.cache"),
	}
}

func (c *cachedTranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	key := cacheKey(text, targetLang)

	cached, err := c.rdb.Get(ctx, key).Result()
	if err == nil && cached != "" {
		return cached, nil
	}
	if err != nil && !errors.Is(err, redis.Nil) {
		c.log.Warn("translation cache read failed", zap.Error(err))
	}

	translated, err := c.next.Translate(ctx, text, targetLang)
	if err != nil {
		return "", err
	}

	if setErr := c.rdb.Set(ctx, key, translated, c.ttl).Err(); setErr != nil {
		c.log.Warn("translation cache write failed", zap.Error(setErr))
	}
	return translated, nil
}

func cacheKey(text, targetLang string) string {
	sum := sha256.Sum256([]byte(text))
	return "placesync:translation:" + targetLang + ":" + hex.EncodeToString(sum[:])
}
