package di

import (
	"testing"

	icache "FinCast/internal/service/cache"
	"FinCast/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte("data:\n  raw_dir: " + t.TempDir() + "\n"))
	require.NoError(t, err)
	return cfg
}

func TestOptionalInfraDisabled(t *testing.T) {
	cfg := testConfig(t)
	l, err := ProvideLogger(cfg)
	require.NoError(t, err)

	ch, cleanup, err := ProvideClickHouseClient(cfg, l)
	require.NoError(t, err)
	assert.Nil(t, ch)
	cleanup()
	assert.Nil(t, ProvideMarketStore(ch, l))

	p, cleanup, err := ProvideKafkaProducer(cfg, ProvideRegistry(), l)
	require.NoError(t, err)
	assert.Nil(t, p)
	cleanup()
	assert.Nil(t, ProvideReportPublisher(p, cfg))

	cache, cleanup, err := ProvideProfileCache(cfg, l)
	require.NoError(t, err)
	defer cleanup()
	assert.IsType(t, &icache.TTLCache{}, cache)

	assert.Nil(t, ProvideMarketData(cfg, cache))
	assert.Nil(t, ProvideLiveCollector(cfg, ProvideMetrics(ProvideRegistry()), l))
	assert.False(t, ProvideSocialSignals(cfg).Configured())
}

func TestInitializeWithDefaults(t *testing.T) {
	cfg := testConfig(t)
	cfg.Finnhub.APIKey = "k"

	app, cleanup, err := InitializeApp(cfg)
	require.NoError(t, err)
	require.NotNil(t, app)
	cleanup()

	tools, cleanup, err := InitializeTools(cfg)
	require.NoError(t, err)
	defer cleanup()
	assert.NotNil(t, tools.Fetcher)
	assert.NotNil(t, tools.Predictor)
	assert.NotNil(t, tools.Constituents)
}
