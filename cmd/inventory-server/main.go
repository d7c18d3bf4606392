package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/retailorbit/smart-inventory/internal/api"
	"github.com/retailorbit/smart-inventory/internal/cache"
	"github.com/retailorbit/smart-inventory/internal/config"
	"github.com/retailorbit/smart-inventory/internal/database"
	"github.com/retailorbit/smart-inventory/internal/limiter"
	"github.com/retailorbit/smart-inventory/internal/logger"
	"github.com/retailorbit/smart-inventory/internal/mailer"
	"github.com/retailorbit/smart-inventory/internal/mq"
	"github.com/retailorbit/smart-inventory/internal/repo"
	"github.com/retailorbit/smart-inventory/internal/router"
	"github.com/retailorbit/smart-inventory/internal/service"
)

// initConfigAndLogger 初始化配置和日志器
func initConfigAndLogger() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %v", err)
	}

	// init logger
	lg, err := logger.New(cfg.App.Env, cfg.Log.Level, cfg.Log.Encoding, cfg.App.Name, cfg.App.Version)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %v", err)
	}

	return cfg, lg, nil
}

// initDatabase 初始化数据库连接并执行迁移
func initDatabase(cfg *config.Config, lg *zap.Logger) (*database.DB, error) {
	db, err := database.New(cfg, lg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// 在HTTP服务器启动前执行数据库迁移，确保处理请求时库表结构已就绪
	migrationsDir := cfg.Migrations.Dir
	lg.Sugar().Infow("using migrations directory", "path", migrationsDir)

	if err := db.RunMigrations(migrationsDir); err != nil {
		return nil, fmt.Errorf("failed to run database migrations: %v", err)
	}

	return db, nil
}

// initCache 初始化缓存实例
func initCache(cfg *config.Config, lg *zap.Logger) cache.Cache {
	var cacheInstance cache.Cache
	if cfg.Cache.Enabled {
		switch cfg.Cache.Type {
		case "redis":
			redisAddr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
			redisCache, err := cache.NewRedisCache(redisAddr, cfg.Redis.Password, cfg.Redis.DB)
			if err != nil {
				lg.Sugar().Warnw("failed to connect to Redis, falling back to memory cache", "error", err)
				cacheInstance = cache.NewMemoryCache()
				lg.Sugar().Infow("cache enabled", "type", "memory (fallback)", "ttl", cfg.Cache.TTL)
			} else {
				cacheInstance = redisCache
				lg.Sugar().Infow("cache enabled", "type", "redis", "addr", redisAddr, "ttl", cfg.Cache.TTL)
			}
		case "memory":
			cacheInstance = cache.NewMemoryCache()
			lg.Sugar().Infow("cache enabled", "type", "memory", "ttl", cfg.Cache.TTL)
		default:
			lg.Sugar().Warnw("unknown cache type, using memory cache", "type", cfg.Cache.Type)
			cacheInstance = cache.NewMemoryCache()
			lg.Sugar().Infow("cache enabled", "type", "memory (default)", "ttl", cfg.Cache.TTL)
		}
	} else {
		cacheInstance = cache.NewNullCache()
		lg.Sugar().Infow("cache disabled")
	}
	return cacheInstance
}

// initLimiters 初始化限流器。限流基于Redis Lua脚本实现，
// 缓存未使用Redis时限流自动关闭。
func initLimiters(cfg *config.Config, cacheInstance cache.Cache, lg *zap.Logger) (saleLimiter, globalLimiter limiter.Limiter) {
	if !cfg.RateLimit.Enabled {
		lg.Sugar().Infow("rate limiting disabled")
		return nil, nil
	}

	redisCache, ok := cacheInstance.(*cache.RedisCache)
	if !ok {
		lg.Sugar().Warnw("rate limiting requires redis cache, skipping")
		return nil, nil
	}

	factory := limiter.NewFactory(redisCache.Client())
	limiterCfg := &limiter.Config{
		Rate:   cfg.RateLimit.Rate,
		Burst:  cfg.RateLimit.Burst,
		Window: cfg.RateLimit.Window,
	}

	saleLimiter, err := factory.Create(limiter.LimiterType(cfg.RateLimit.Algorithm), limiterCfg)
	if err != nil {
		lg.Sugar().Warnw("failed to create sale rate limiter", "error", err)
		saleLimiter = nil
	}

	globalCfg := &limiter.Config{
		Rate:   cfg.RateLimit.Rate * 10,
		Burst:  cfg.RateLimit.Burst * 10,
		Window: cfg.RateLimit.Window,
	}
	globalLimiter, err = factory.Create(limiter.LimiterType(cfg.RateLimit.Algorithm), globalCfg)
	if err != nil {
		lg.Sugar().Warnw("failed to create global rate limiter", "error", err)
		globalLimiter = nil
	}

	lg.Sugar().Infow("rate limiting enabled",
		"algorithm", cfg.RateLimit.Algorithm, "rate", cfg.RateLimit.Rate, "window", cfg.RateLimit.Window)
	return saleLimiter, globalLimiter
}

// initDependencies 初始化应用依赖（仓储、服务、处理器）
// 返回路由依赖和挂接到消息队列的通知服务。
func initDependencies(cfg *config.Config, db *database.DB, cacheInstance cache.Cache, publisher mq.SalePublisher, lg *zap.Logger) (*router.Dependencies, service.NotifierService) {
	// 初始化依赖注入链：仓储 -> 服务 -> API处理器
	baseProductRepo := repo.NewProductRepository(db.DB)
	stockRepo := repo.NewStockRepository(db.DB, cacheInstance)
	customerRepo := repo.NewCustomerRepository(db.DB)
	saleRepo := repo.NewSaleRepository(db.DB, cacheInstance)
	feedbackRepo := repo.NewFeedbackRepository(db.DB)
	reportRepo := repo.NewReportRepository(db.DB)
	emailLogRepo := repo.NewEmailLogRepository(db.DB)

	// 可选缓存装饰器（库存变更走销售/台账事务，事务提交后清理商品缓存键）
	var productRepo repo.ProductRepository
	if cfg.Cache.Enabled {
		productRepo = repo.NewCachedProductRepository(baseProductRepo, cacheInstance, cfg.Cache.TTL)
	} else {
		productRepo = baseProductRepo
	}

	jwtService := service.NewJWTService(cfg, lg)
	productService := service.NewProductService(productRepo)
	ledgerService := service.NewLedgerService(stockRepo, productRepo)
	customerService := service.NewCustomerService(customerRepo)
	saleService := service.NewSaleService(saleRepo, productRepo, publisher, lg)
	feedbackService := service.NewFeedbackService(feedbackRepo, saleRepo, productRepo)
	reportService := service.NewReportService(reportRepo, productRepo, cacheInstance, cfg.Cache.DashboardTTL)

	// 邮件通知服务。邮件未启用时不发信，只记录跳过状态
	var m mailer.Mailer
	if cfg.Mail.Enabled {
		m = mailer.New(cfg.Mail)
		lg.Sugar().Infow("mail notifications enabled", "from", cfg.Mail.FromEmail)
	}
	notifierService := service.NewNotifierService(m, emailLogRepo, saleRepo, lg)

	saleLimiter, globalLimiter := initLimiters(cfg, cacheInstance, lg)

	deps := &router.Dependencies{
		AuthHandler:     api.NewAuthHandler(jwtService, lg),
		ProductHandler:  api.NewProductHandler(productService, lg),
		StockHandler:    api.NewStockHandler(ledgerService, lg),
		SaleHandler:     api.NewSaleHandler(saleService, notifierService, lg),
		FeedbackHandler: api.NewFeedbackHandler(feedbackService, lg),
		CustomerHandler: api.NewCustomerHandler(customerService, lg),
		ReportHandler:   api.NewReportHandler(reportService, lg),
		JWTService:      jwtService,
		Cache:           cacheInstance,
		SaleLimiter:     saleLimiter,
		GlobalLimiter:   globalLimiter,
	}
	return deps, notifierService
}

// initMessaging 初始化消息队列连接和生产者。
// 队列未启用或连接失败时回退为空实现，销售链路不受影响。
func initMessaging(cfg *config.Config, lg *zap.Logger) (*mq.Connection, mq.SalePublisher) {
	if !cfg.MQ.Enabled {
		lg.Sugar().Infow("message queue disabled")
		return nil, mq.NopPublisher{}
	}

	conn, err := mq.NewConnection(cfg.MQ.URL, cfg.MQ.Exchange, cfg.MQ.Queue, lg)
	if err != nil {
		lg.Sugar().Warnw("failed to connect to message queue, events disabled", "error", err)
		return nil, mq.NopPublisher{}
	}

	lg.Sugar().Infow("message queue connected", "exchange", cfg.MQ.Exchange, "queue", cfg.MQ.Queue)
	return conn, mq.NewProducer(conn, cfg.MQ.Exchange, lg)
}

// startServer 启动服务器并处理优雅关闭
func startServer(cfg *config.Config, handler http.Handler, lg *zap.Logger) {
	addr := fmt.Sprintf(":%d", cfg.App.Port)
	lg.Sugar().Infow("server starting", "addr", addr)
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 5 * time.Second}

	// 启动服务器（异步）
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	select {
	case err := <-serverErrCh:
		if err != nil && err != http.ErrServerClosed {
			lg.Sugar().Fatalw("server error", "err", err)
		}
	case <-quit:
		lg.Sugar().Infow("shutdown signal received")
	}

	// 优雅关闭
	ctx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		lg.Sugar().Errorw("server shutdown error", "err", err)
	}
	lg.Sugar().Infow("server exited")
}

// main 为应用入口，协调各个组件的初始化和启动
func main() {
	// 1) 加载配置和初始化日志
	cfg, lg, err := initConfigAndLogger()
	if err != nil {
		log.Fatalf("failed to initialize config and logger: %v", err)
	}

	// 2) 初始化数据库连接并执行迁移
	db, err := initDatabase(cfg, lg)
	if err != nil {
		lg.Sugar().Fatalw("failed to initialize database", "err", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			lg.Sugar().Errorw("failed to close database connection", "err", err)
		}
	}()

	// 3) 初始化缓存
	cacheInstance := initCache(cfg, lg)

	// 4) 初始化消息队列
	mqConn, publisher := initMessaging(cfg, lg)
	if mqConn != nil {
		defer func() {
			if err := mqConn.Close(); err != nil {
				lg.Sugar().Errorw("failed to close message queue connection", "err", err)
			}
		}()
	}

	// 5) 初始化应用依赖（仓储、服务、处理器）
	deps, notifierService := initDependencies(cfg, db, cacheInstance, publisher, lg)

	// 6) 启动销售完成事件消费者（发送反馈邮件）
	if mqConn != nil {
		consumerCtx, stopConsumer := context.WithCancel(context.Background())
		defer stopConsumer()
		consumer := mq.NewConsumer(mqConn, cfg.MQ.Queue, notifierService.HandleSaleCompleted, lg)
		go consumer.Run(consumerCtx)
	}

	// 7) 设置路由和中间件
	handler := router.New().Setup(cfg, deps, lg)

	// 8) 启动 HTTP 服务器
	startServer(cfg, handler, lg)
}
