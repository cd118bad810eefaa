package llm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestCachedClientHitsCacheForLowTemperature(t *testing.T) {
	mr, client := newTestRedis(t)
	mock := &MockClient{Response: `{"mbti":"INTJ"}`}
	c := NewCachedClient(mock, NewRedisCacheStore(client), "qwen", time.Minute, zap.NewNop())

	req := ChatRequest{Messages: []Message{{Role: RoleUser, Content: "infer"}}, Temperature: 0.2, MaxTokens: 400}
	for i := 0; i < 3; i++ {
		out, err := c.Chat(context.Background(), req)
		require.NoError(t, err)
		require.Equal(t, `{"mbti":"INTJ"}`, out)
	}
	require.Equal(t, 1, mock.Calls)
	require.Len(t, mr.Keys(), 1)
	require.Contains(t, mr.Keys()[0], "llm:cache:")
}

func TestCachedClientSkipsCreativeRequests(t *testing.T) {
	_, client := newTestRedis(t)
	mock := &MockClient{Response: "[]"}
	c := NewCachedClient(mock, NewRedisCacheStore(client), "qwen", time.Minute, zap.NewNop())

	req := ChatRequest{Messages: []Message{{Role: RoleUser, Content: "peer"}}, Temperature: 0.8}
	for i := 0; i < 2; i++ {
		_, err := c.Chat(context.Background(), req)
		require.NoError(t, err)
	}
	require.Equal(t, 2, mock.Calls)
}

func TestCachedClientDoesNotCacheErrors(t *testing.T) {
	mr, client := newTestRedis(t)
	mock := &MockClient{Err: errors.New("boom")}
	c := NewCachedClient(mock, NewRedisCacheStore(client), "qwen", time.Minute, zap.NewNop())

	_, err := c.Chat(context.Background(), ChatRequest{Temperature: 0.1})
	require.Error(t, err)
	require.Empty(t, mr.Keys())
}

func TestCachedClientFailOpenWhenRedisDown(t *testing.T) {
	mr, client := newTestRedis(t)
	mr.Close()
	mock := &MockClient{Response: "ok"}
	c := NewCachedClient(mock, NewRedisCacheStore(client), "qwen", time.Minute, zap.NewNop())

	out, err := c.Chat(context.Background(), ChatRequest{Temperature: 0.1})
	require.NoError(t, err)
	require.Equal(t, "ok", out)
}

func TestCachedClientNilStorePassesThrough(t *testing.T) {
	mock := &MockClient{Response: "ok"}
	c := NewCachedClient(mock, nil, "qwen", 0, nil)
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.Chat(context.Background(), ChatRequest{Temperature: 0.1})
		}()
	}
	wg.Wait()
	require.Equal(t, 4, mock.Calls)
}

// blockingClient retiene la primera llamada hasta que se cierra release.
type blockingClient struct {
	started chan struct{}
	release chan struct{}

	mu     sync.Mutex
	calls  int
	ctxErr error
}

func (b *blockingClient) Generate(ctx context.Context, prompt string) (string, error) {
	return b.Chat(ctx, ChatRequest{Messages: []Message{{Role: RoleUser, Content: prompt}}})
}

func (b *blockingClient) Chat(ctx context.Context, _ ChatRequest) (string, error) {
	b.mu.Lock()
	b.calls++
	first := b.calls == 1
	b.mu.Unlock()
	if first {
		close(b.started)
		<-b.release
		b.mu.Lock()
		b.ctxErr = ctx.Err()
		b.mu.Unlock()
	}
	return "ok", nil
}

func TestCachedClientSharedCallSurvivesCallerCancel(t *testing.T) {
	mr, client := newTestRedis(t)
	slow := &blockingClient{started: make(chan struct{}), release: make(chan struct{})}
	c := NewCachedClient(slow, NewRedisCacheStore(client), "qwen", time.Minute, zap.NewNop())
	req := ChatRequest{Messages: []Message{{Role: RoleUser, Content: "scenario"}}, Temperature: 0.3}

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.Chat(ctx, req)
		firstErr <- err
	}()
	<-slow.started

	cancel()
	select {
	case err := <-firstErr:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatalf("cancelled caller must return without waiting for the shared call")
	}

	type result struct {
		out string
		err error
	}
	second := make(chan result, 1)
	go func() {
		out, err := c.Chat(context.Background(), req)
		second <- result{out, err}
	}()
	close(slow.release)

	select {
	case r := <-second:
		require.NoError(t, r.err)
		require.Equal(t, "ok", r.out)
	case <-time.After(2 * time.Second):
		t.Fatalf("second caller never got the shared result")
	}

	slow.mu.Lock()
	defer slow.mu.Unlock()
	require.NoError(t, slow.ctxErr)
	require.Len(t, mr.Keys(), 1)
}

func TestNewRedisCacheStoreNilClient(t *testing.T) {
	require.Nil(t, NewRedisCacheStore(nil))
}
