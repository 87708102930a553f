package main

import (
	"os"

	"github.com/gunnermanx/simplematchmaker/auth"
	"github.com/gunnermanx/simplematchmaker/config"
	"github.com/gunnermanx/simplematchmaker/datastore"
	"github.com/gunnermanx/simplematchmaker/engine"
	"github.com/gunnermanx/simplematchmaker/matchmaking"
	"github.com/gunnermanx/simplematchmaker/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()

	conf, err := config.LoadMatchmakingServerConfig()
	if err != nil {
		logger.Errorf("failed to load config: %s", err.Error())
		os.Exit(1)
	}
	if conf.DebugMode {
		logger.SetLevel(logrus.DebugLevel)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	eng, err := engine.New(engine.Options{
		Pool:            conf.Engine.Pool,
		SkillThreshold:  conf.Engine.SkillThreshold,
		TableSize:       conf.Engine.TableSize,
		HistoryCapacity: conf.Engine.HistoryCapacity,
		HistoryPolicy:   engine.HistoryPolicy(conf.Engine.HistoryPolicy),
		SearchStrategy:  engine.SearchStrategy(conf.Engine.SearchStrategy),
		PurgeOnMatch:    conf.Engine.PurgeOnMatch,
		Logger:          logger,
		Metrics:         metrics.NewMetrics(registry),
	})
	if err != nil {
		logger.Errorf("failed to create engine: %s", err.Error())
		os.Exit(1)
	}

	sms := matchmaking.New(
		conf,
		logger,
		auth.NewHeaderAuthProvider(),
		datastore.NewMemoryDatastore(conf.ProfileTTL),
		eng,
		registry,
	)
	if err = sms.Start(); err != nil {
		logger.Errorf("server stopped: %s", err.Error())
		os.Exit(1)
	}
}
