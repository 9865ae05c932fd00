package statscache

import (
	"context"
	"testing"
	"time"

	"sentimentreviews/pkg/reviewquery"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type StatsCacheTestSuite struct {
	suite.Suite
	miniRedis *miniredis.Miniredis
	client    *redis.Client
	cache     *Cache
}

func TestStatsCacheSuite(t *testing.T) {
	suite.Run(t, new(StatsCacheTestSuite))
}

func (s *StatsCacheTestSuite) SetupSuite() {
	var err error
	s.miniRedis, err = miniredis.Run()
	require.NoError(s.T(), err)

	s.client = redis.NewClient(&redis.Options{Addr: s.miniRedis.Addr()})
	s.cache = New(s.client, 10*time.Minute, "statscache-test")
}

func (s *StatsCacheTestSuite) SetupTest() {
	s.miniRedis.FlushAll()
}

func (s *StatsCacheTestSuite) TearDownSuite() {
	s.client.Close()
	s.miniRedis.Close()
}

func sampleSnapshot() *Snapshot {
	return &Snapshot{
		Aggregates: reviewquery.Aggregate([]reviewquery.Review{
			{ID: "1", Rating: 5, Sentiment: reviewquery.SentimentPositive},
			{ID: "2", Rating: 2, Sentiment: reviewquery.SentimentNegative},
			{ID: "3", Rating: 4, Sentiment: reviewquery.SentimentNeutral},
		}),
		GeneratedAt: time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (s *StatsCacheTestSuite) TestGet_Miss() {
	snapshot, err := s.cache.Get(context.Background())

	s.NoError(err)
	s.Nil(snapshot)
}

func (s *StatsCacheTestSuite) TestSetAndGet() {
	ctx := context.Background()
	s.Require().NoError(s.cache.Set(ctx, sampleSnapshot()))

	snapshot, err := s.cache.Get(ctx)

	s.Require().NoError(err)
	s.Require().NotNil(snapshot)
	s.Equal(3, snapshot.Aggregates.Total)
	s.Equal(3.7, snapshot.Aggregates.AverageRating)
	s.Equal(1, snapshot.Aggregates.RatingCounts[5])
	s.Equal(0, snapshot.Aggregates.RatingCounts[3])
	s.Equal(33.3, snapshot.Aggregates.SentimentPercentages[reviewquery.SentimentNeutral])
	s.True(snapshot.GeneratedAt.Equal(sampleSnapshot().GeneratedAt))
}

func (s *StatsCacheTestSuite) TestSet_AppliesTTL() {
	ctx := context.Background()
	s.Require().NoError(s.cache.Set(ctx, sampleSnapshot()))

	s.Equal(10*time.Minute, s.miniRedis.TTL(SnapshotKey))

	s.miniRedis.FastForward(11 * time.Minute)

	snapshot, err := s.cache.Get(ctx)
	s.NoError(err)
	s.Nil(snapshot)
}

func (s *StatsCacheTestSuite) TestInvalidate() {
	ctx := context.Background()
	s.Require().NoError(s.cache.Set(ctx, sampleSnapshot()))

	s.Require().NoError(s.cache.Invalidate(ctx))

	s.False(s.miniRedis.Exists(SnapshotKey))
}

func (s *StatsCacheTestSuite) TestInvalidate_MissingKey() {
	s.NoError(s.cache.Invalidate(context.Background()))
}

func (s *StatsCacheTestSuite) TestGet_CorruptedValue() {
	s.Require().NoError(s.miniRedis.Set(SnapshotKey, "{not json"))

	snapshot, err := s.cache.Get(context.Background())

	s.Error(err)
	s.Nil(snapshot)
}

func (s *StatsCacheTestSuite) TestGet_RedisDown() {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	defer client.Close()
	cache := New(client, time.Minute, "statscache-test")

	snapshot, err := cache.Get(context.Background())

	s.Error(err)
	s.Nil(snapshot)
}
