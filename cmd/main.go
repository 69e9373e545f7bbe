package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lvdashuaibi/awardvote/config"
	"github.com/lvdashuaibi/awardvote/internal/api/graph"
	"github.com/lvdashuaibi/awardvote/internal/identity"
	intkafka "github.com/lvdashuaibi/awardvote/internal/kafka"
	"github.com/lvdashuaibi/awardvote/internal/lock"
	"github.com/lvdashuaibi/awardvote/internal/repository"
	"github.com/lvdashuaibi/awardvote/internal/service"
	"github.com/lvdashuaibi/awardvote/migrations"
)

const shutdownTimeout = 10 * time.Second

var configPath = flag.String("config", "config/config.yaml", "配置文件路径")

func main() {
	// 解析命令行参数
	flag.Parse()

	// 加载配置
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	logger := setupLogger(cfg.Server.Mode)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("服务异常退出", "err", err)
		os.Exit(1)
	}
}

func setupLogger(mode string) *slog.Logger {
	if mode == "debug" {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

func run(cfg *config.Config, logger *slog.Logger) error {
	st, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	ledger, closeCache, err := openLedger(cfg, st, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	var publisher service.EventPublisher
	var producer *intkafka.Producer
	if cfg.Kafka.Enabled {
		producer, err = intkafka.NewProducer(cfg.Kafka, logger)
		if err != nil {
			return err
		}
		defer producer.Close()
		publisher = producer
	} else {
		logger.Info("Kafka未启用，投票审计日志将同步写入")
	}

	voteService := service.NewVoteService(st, ledger, publisher, service.TallyOptions{
		Scope: service.CountScope(cfg.Tally.CountScope),
	}, logger)
	adminService := service.NewAdminService(st, logger)
	logger.Info("投票服务初始化成功", "count_scope", cfg.Tally.CountScope)

	if cfg.Kafka.Enabled {
		consumer, err := intkafka.NewConsumer(cfg.Kafka, logger)
		if err != nil {
			return err
		}
		// 在生产者之前关闭
		defer func() {
			if err := consumer.Stop(); err != nil {
				logger.Warn("关闭Kafka消费者失败", "err", err)
			}
		}()
		consumer.StartConsuming(voteService.ProcessVoteEvent)
	}

	verifier := identity.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.AdminEmails)
	server := graph.NewGraphQLServer(*cfg, voteService, adminService, verifier, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()
	logger.Info("Award Vote 系统已启动", "port", cfg.Server.Port, "graphql", cfg.GraphQL.Path)

	// 等待中断信号
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logger.Info("正在关闭服务...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// openStore 创建存储，MySQL存储启动时在分布式锁保护下执行迁移
func openStore(cfg *config.Config, logger *slog.Logger) (repository.Store, error) {
	if cfg.Store.Driver == "memory" {
		logger.Warn("使用内存存储，数据不会持久化")
		return repository.NewMemoryRepository(), nil
	}

	repo, err := repository.NewMySQLRepository(cfg.MySQL, logger)
	if err != nil {
		return nil, err
	}

	l, err := lock.New(cfg, logger)
	if err != nil {
		repo.Close()
		return nil, err
	}
	if l != nil {
		defer l.Close()
	}

	if err := migrations.Up(repo.MasterDB(), l, cfg.Lock.Timeout, logger); err != nil {
		repo.Close()
		return nil, err
	}
	logger.Info("MySQL仓库初始化成功")
	return repo, nil
}

// openLedger 按 cache.driver 组装投票台账
func openLedger(cfg *config.Config, st repository.Store, logger *slog.Logger) (service.VoteLedger, func(), error) {
	source := service.NewStoreLedger(st)

	switch cfg.Cache.Driver {
	case "redis":
		client, err := repository.NewRedisClient(cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		cache := repository.NewRedisBallotCache(client, cfg.Cache.TTL)
		logger.Info("Redis缓存初始化成功", "addr", cfg.Redis.DataAddress)
		return service.NewCachedLedger(source, cache, logger), func() { cache.Close() }, nil
	case "memory":
		return service.NewCachedLedger(source, repository.NewMemoryBallotCache(cfg.Cache.TTL), logger), func() {}, nil
	default:
		return source, func() {}, nil
	}
}
