package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	pkg "git.solsynth.dev/hypernet/questionnaire/pkg/internal"
	localCache "git.solsynth.dev/hypernet/questionnaire/pkg/internal/cache"
	"git.solsynth.dev/hypernet/questionnaire/pkg/internal/database"
	"git.solsynth.dev/hypernet/questionnaire/pkg/internal/grpc"
	"git.solsynth.dev/hypernet/questionnaire/pkg/internal/http"
	"git.solsynth.dev/hypernet/questionnaire/pkg/internal/insights"
	"git.solsynth.dev/hypernet/questionnaire/pkg/internal/services"
	"github.com/fatih/color"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
}

func main() {
	// Booting screen
	fmt.Printf("%s v%s\n", color.New(color.FgHiYellow).Add(color.Bold).Sprintf("Hypernet.Questionnaire"), pkg.AppVersion)
	fmt.Printf("The survey and insights service in Hypernet\n")
	color.HiBlack("=====================================================\n")

	// Configure settings
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.SetConfigName("settings")
	viper.SetConfigType("toml")

	cacheDefaults := localCache.DefaultConfig()
	insightsDefaults := insights.DefaultConfig()
	viper.SetDefault("cache.driver", cacheDefaults.Driver)
	viper.SetDefault("cache.redis_addr", cacheDefaults.RedisAddr)
	viper.SetDefault("cache.breaker_threshold", cacheDefaults.BreakerThreshold)
	viper.SetDefault("cache.breaker_timeout", cacheDefaults.BreakerTimeout)
	viper.SetDefault("insights.cache_capacity", insightsDefaults.Capacity)
	viper.SetDefault("insights.cache_ttl", insightsDefaults.TTL)
	viper.SetDefault("insights.page_size", insightsDefaults.PageSize)
	viper.SetDefault("insights.compute_timeout", insightsDefaults.ComputeTimeout)
	viper.SetDefault("insights.refresh_cron", "@every 60m")

	// Load settings
	if err := viper.ReadInConfig(); err != nil {
		log.Panic().Err(err).Msg("An error occurred when loading settings.")
	}

	// Connect to database
	if err := database.NewGorm(); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when connect to database.")
	} else if err := database.RunMigration(database.C); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when running database auto migration.")
	}

	// Connect to cache
	cacheCfg := localCache.Config{
		Driver:           viper.GetString("cache.driver"),
		RedisAddr:        viper.GetString("cache.redis_addr"),
		RedisPassword:    viper.GetString("cache.redis_password"),
		RedisDB:          viper.GetInt("cache.redis_db"),
		BreakerThreshold: viper.GetUint32("cache.breaker_threshold"),
		BreakerTimeout:   viper.GetDuration("cache.breaker_timeout"),
	}
	backend, err := localCache.NewStore(cacheCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("An error occurred when connecting to cache.")
	}
	defer backend.Close()
	log.Info().Str("driver", backend.GetType()).Msg("Cache backend ready.")

	// Insights
	insightsCfg := insights.Config{
		Capacity:       viper.GetInt("insights.cache_capacity"),
		TTL:            viper.GetDuration("insights.cache_ttl"),
		PageSize:       viper.GetInt("insights.page_size"),
		ComputeTimeout: viper.GetDuration("insights.compute_timeout"),
		ServeSnapshots: viper.GetBool("insights.serve_snapshots"),
	}
	breaker := localCache.NewBreakerCache("insights", backend, cacheCfg.BreakerThreshold, cacheCfg.BreakerTimeout)
	store := services.NewInsightStore(database.C)
	svc, err := insights.NewService(insightsCfg, store, store, insights.NewCache(breaker, insightsCfg.Capacity, insightsCfg.TTL))
	if err != nil {
		log.Fatal().Err(err).Msg("An error occurred when configuring insights.")
	}

	// Health checks
	health := grpc.NewGrpc(
		grpc.HealthCheck{Name: "database", Probe: func(ctx context.Context) error {
			raw, err := database.C.DB()
			if err != nil {
				return err
			}
			return raw.PingContext(ctx)
		}},
		grpc.HealthCheck{Name: "cache", Probe: backend.Ping},
	)
	probe := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		health.CheckHealth(ctx)
	}
	probe()

	// Configure timed tasks
	quartz := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(&log.Logger)))
	if _, err := quartz.AddFunc(viper.GetString("insights.refresh_cron"), svc.RefreshAll); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when scheduling insights refresh.")
	}
	quartz.AddFunc("@every 1m", probe)
	quartz.Start()

	// Server
	server := http.NewServer(database.C, svc)
	go server.Listen()

	go func() {
		if err := health.Listen(); err != nil {
			log.Fatal().Err(err).Msg("An error occurred when starting grpc server...")
		}
	}()

	// Messages
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	<-quartz.Stop().Done()
	health.Stop()
	if err := server.Shutdown(); err != nil {
		log.Error().Err(err).Msg("An error occurred when shutting down server...")
	}
}
