package llm

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/singleflight"
)

// CacheStore guarda respuestas del LLM por clave.
type CacheStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

type redisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

type redisCacheStore struct {
	client redisKV
	prefix string
}

// NewRedisCacheStore devuelve nil si no hay cliente, y CachedClient pasa directo al LLM.
func NewRedisCacheStore(client *redis.Client) CacheStore {
	if client == nil {
		return nil
	}
	return &redisCacheStore{client: client, prefix: "llm:cache:"}
}

func (s *redisCacheStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *redisCacheStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+key, value, ttl).Err()
}

// DefaultCacheMaxTemperature deja fuera de cache las generaciones creativas.
const DefaultCacheMaxTemperature = 0.35

// sharedCallTimeout acota la llamada compartida, que ya no depende de ningun caller.
const sharedCallTimeout = 2 * time.Minute

// CachedClient memoriza respuestas de baja temperatura y colapsa peticiones identicas concurrentes.
type CachedClient struct {
	next           LLMClient
	store          CacheStore
	ttl            time.Duration
	namespace      string
	maxTemperature float64
	group          singleflight.Group
	logger         *zap.Logger
}

func NewCachedClient(next LLMClient, store CacheStore, namespace string, ttl time.Duration, logger *zap.Logger) *CachedClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CachedClient{
		next:           next,
		store:          store,
		ttl:            ttl,
		namespace:      namespace,
		maxTemperature: DefaultCacheMaxTemperature,
		logger:         logger,
	}
}

func (c *CachedClient) Generate(ctx context.Context, prompt string) (string, error) {
	return c.next.Generate(ctx, prompt)
}

func (c *CachedClient) Chat(ctx context.Context, req ChatRequest) (string, error) {
	if c.store == nil || req.Temperature > c.maxTemperature {
		return c.next.Chat(ctx, req)
	}

	key, err := c.cacheKey(req)
	if err != nil {
		return c.next.Chat(ctx, req)
	}

	if val, ok, err := c.store.Get(ctx, key); err != nil {
		c.logger.Warn("llm cache get failed", zap.Error(err))
	} else if ok {
		c.logger.Debug("llm cache hit", zap.String("key", key))
		return val, nil
	}

	// La llamada compartida no hereda la cancelacion del primer caller; cada uno
	// espera con su propio ctx.
	ch := c.group.DoChan(key, func() (interface{}, error) {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedCallTimeout)
		defer cancel()
		out, err := c.next.Chat(sctx, req)
		if err != nil {
			return "", err
		}
		if err := c.store.Set(sctx, key, out, c.ttl); err != nil {
			c.logger.Warn("llm cache set failed", zap.Error(err))
		}
		return out, nil
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (c *CachedClient) cacheKey(req ChatRequest) (string, error) {
	payload, err := json.Marshal(struct {
		Namespace string      `json:"ns"`
		Request   ChatRequest `json:"req"`
	}{c.namespace, req})
	if err != nil {
		return "", err
	}
	sum := blake2b.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
