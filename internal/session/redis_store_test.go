package session

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// RedisStoreSuite runs the Redis credential store against a real Redis.
type RedisStoreSuite struct {
	suite.Suite
	ctx       context.Context
	container *tcredis.RedisContainer
	rdb       *redis.Client
	store     *RedisStore
}

func (s *RedisStoreSuite) SetupSuite() {
	s.ctx = context.Background()

	container, err := tcredis.Run(s.ctx,
		"redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	connStr, err := container.ConnectionString(s.ctx)
	s.Require().NoError(err)

	opts, err := redis.ParseURL(connStr)
	s.Require().NoError(err)
	s.rdb = redis.NewClient(opts)
	s.store = NewRedisStore(s.rdb, time.Hour, zap.NewNop())
}

func (s *RedisStoreSuite) TearDownSuite() {
	if s.rdb != nil {
		s.rdb.Close()
	}
	if s.container != nil {
		s.Require().NoError(testcontainers.TerminateContainer(s.container))
	}
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.rdb.FlushAll(s.ctx).Err())
}

func (s *RedisStoreSuite) TestGet_Missing_ReturnsEmpty() {
	token, err := s.store.Get(s.ctx, "nobody")

	s.NoError(err)
	s.Empty(token)
}

func (s *RedisStoreSuite) TestSetGetDelete_RoundTrip() {
	s.Require().NoError(s.store.Set(s.ctx, "sid", "secret"))

	token, err := s.store.Get(s.ctx, "sid")
	s.NoError(err)
	s.Equal("secret", token)

	ttl, err := s.rdb.TTL(s.ctx, "linkboard:session:sid:token").Result()
	s.NoError(err)
	s.Greater(ttl, time.Duration(0))

	s.Require().NoError(s.store.Delete(s.ctx, "sid"))
	token, _ = s.store.Get(s.ctx, "sid")
	s.Empty(token)
}

func (s *RedisStoreSuite) TestGet_BrokenConnection_ReadsEmpty() {
	broken := NewRedisStore(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1}), time.Hour, zap.NewNop())

	token, err := broken.Get(s.ctx, "sid")

	s.NoError(err)
	s.Empty(token)
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Redis integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}
