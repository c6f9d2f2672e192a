package bootstrap

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starter-squad/lms/config"
	"github.com/starter-squad/lms/internal/testutil"
)

func TestConnectRedis_Direct(t *testing.T) {
	mr, _ := testutil.SetupMiniRedis(t)

	for _, uri := range []string{mr.Addr(), "redis://" + mr.Addr() + "/0"} {
		t.Run(uri, func(t *testing.T) {
			client, err := ConnectRedis(DatabaseConfig{RedisConfig: config.RedisConfig{URI: uri}})
			require.NoError(t, err)
			t.Cleanup(func() { _ = client.Close() })

			assert.IsType(t, &redis.Client{}, client)
			require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
			got, err := mr.Get("k")
			require.NoError(t, err)
			assert.Equal(t, "v", got)
		})
	}
}

func TestConnectRedis_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.RedisConfig
	}{
		{"empty uri", config.RedisConfig{URI: "  "}},
		{"bad url", config.RedisConfig{URI: "redis://:bad port"}},
		{"sentinel without nodes", config.RedisConfig{UseSentinel: true}},
		{"cluster without nodes", config.RedisConfig{UseCluster: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := ConnectRedis(DatabaseConfig{RedisConfig: tt.cfg})
			assert.Error(t, err)
			assert.Nil(t, client)
		})
	}
}

func TestRedisOptions(t *testing.T) {
	opts, target, err := redisOptions(config.RedisConfig{
		UseCluster: true,
		URI:        "rediss://sess:pw@cache:6380",
		Password:   "default",
	})
	require.NoError(t, err)
	assert.True(t, opts.IsClusterMode)
	assert.Equal(t, []string{"cache:6380"}, opts.Addrs)
	assert.Equal(t, "sess", opts.Username)
	assert.Equal(t, "pw", opts.Password)
	assert.NotNil(t, opts.TLSConfig)
	assert.Equal(t, "cluster cache:6380", target)
	assert.NotContains(t, target, "pw")

	opts, _, err = redisOptions(config.RedisConfig{UseCluster: true, ClusterNodes: []string{" a:1 ", "b:2"}, Password: "default"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a:1", "b:2"}, opts.Addrs)
	assert.Equal(t, "default", opts.Password)

	opts, target, err = redisOptions(config.RedisConfig{
		UseSentinel:        true,
		SentinelNodes:      []string{"s1:26379"},
		SentinelMasterName: "primary",
	})
	require.NoError(t, err)
	assert.Equal(t, "primary", opts.MasterName)
	assert.Equal(t, "sentinel primary", target)

	opts, _, err = redisOptions(config.RedisConfig{URI: "cache:6379", Password: "default"})
	require.NoError(t, err)
	assert.Equal(t, []string{"cache:6379"}, opts.Addrs)
	assert.Equal(t, "default", opts.Password)
	assert.False(t, opts.IsClusterMode)
}

func TestNormalizeAddrs(t *testing.T) {
	assert.Equal(t, []string{"a:1", "b:2"}, normalizeAddrs([]string{" a:1 ", "", "b:2"}))
	assert.Empty(t, normalizeAddrs(nil))
}
