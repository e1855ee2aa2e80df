package server

import (
	"context"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"

	"github.com/saasgenius/saasgenius/internal/analyzer"
	"github.com/saasgenius/saasgenius/internal/biz"
	"github.com/saasgenius/saasgenius/internal/cache"
	"github.com/saasgenius/saasgenius/internal/conf"
	"github.com/saasgenius/saasgenius/internal/data"
	"github.com/saasgenius/saasgenius/internal/history"
	"github.com/saasgenius/saasgenius/internal/metrics"
	"github.com/saasgenius/saasgenius/internal/research"
	"github.com/saasgenius/saasgenius/internal/service"
	"github.com/saasgenius/saasgenius/internal/tasks"
)

// ProviderSet wires the whole application graph.
var ProviderSet = wire.NewSet(
	// Server providers
	NewHTTPServer,

	// Infrastructure providers
	NewCache,
	NewHistoryStore,
	NewTaskManager,
	NewMetricsCollector,
	NewResearchClient,
	NewAnalyzerEngine,
	NewPinger,

	// Data providers
	data.NewData,
	data.NewUserRepo,
	data.NewProjectRepo,
	data.NewAnalyticsRepo,

	// UseCase providers
	biz.NewUserUseCase,
	biz.NewProjectUseCase,
	biz.NewAnalysisUseCase,

	// Service providers
	service.NewWebService,
)

func NewCache() *cache.Cache {
	return cache.New(1000, 30*time.Minute)
}

func NewHistoryStore(c *conf.Analyzer, logger log.Logger) *history.Store {
	dir := "data/history"
	if c != nil && c.HistoryDir != "" {
		dir = c.HistoryDir
	}
	return history.NewStore(dir, logger)
}

func NewTaskManager(logger log.Logger) *tasks.Manager {
	return tasks.NewManager(4, 100, logger)
}

func NewMetricsCollector() *metrics.Collector {
	return metrics.NewCollector()
}

func NewResearchClient(c *conf.Analyzer) *research.Client {
	if c == nil || c.Research == nil {
		return nil
	}
	return research.NewClient(c.Research.BaseUrl, int(c.Research.Timeout))
}

func NewAnalyzerEngine(c *conf.Analyzer, rc *research.Client) (biz.Analyzer, error) {
	opts := analyzer.Options{Research: rc}
	if c != nil && c.Llm != nil {
		opts.BaseURL = c.Llm.BaseUrl
		opts.APIKey = c.Llm.ApiKey
		opts.Model = c.Llm.Model
	}
	if c != nil && c.Concurrency != nil {
		opts.RPM = int(c.Concurrency.Rpm)
		opts.QPS = int(c.Concurrency.Qps)
	}
	return analyzer.NewEngine(context.Background(), opts)
}

func NewPinger(d *data.Data) biz.Pinger {
	return d
}
