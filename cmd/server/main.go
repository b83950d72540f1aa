package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/YuWang03/kunyu-project-sub003/config"
	"github.com/YuWang03/kunyu-project-sub003/internal/api/handler"
	"github.com/YuWang03/kunyu-project-sub003/internal/api/router"
	"github.com/YuWang03/kunyu-project-sub003/internal/repository"
	"github.com/YuWang03/kunyu-project-sub003/internal/service"
	"github.com/YuWang03/kunyu-project-sub003/pkg/bpm"
	"github.com/YuWang03/kunyu-project-sub003/pkg/database"
	"github.com/YuWang03/kunyu-project-sub003/pkg/jwt"
	applogger "github.com/YuWang03/kunyu-project-sub003/pkg/logger"
	"github.com/YuWang03/kunyu-project-sub003/pkg/oidc"
	"github.com/YuWang03/kunyu-project-sub003/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认 ./config/config.yaml）")
	rollback := flag.Int("rollback", 0, "回滚最近 N 个数据库迁移后退出")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("issuer", cfg.OIDC.IssuerURL()),
	)

	// 3. 连接人事资料库
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if *rollback > 0 {
		if err := database.RollbackMigrations(sqlDB, *rollback, logger); err != nil {
			logger.Fatal("数据库迁移回滚失败", zap.Error(err))
		}
		return
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，Token 黑名单与登录限流将不可用", zap.Error(err))
		rdb = nil
	}

	// 5. 身份提供者：Token 端点客户端 + JWKS 校验器
	rootCtx, stopJWKS := context.WithCancel(context.Background())
	defer stopJWKS()

	verifier, err := jwt.NewJWKSVerifier(rootCtx, cfg.OIDC.JWKSEndpoint(), cfg.OIDC.IssuerURL())
	if err != nil {
		logger.Fatal("加载 JWKS 失败", zap.String("jwks_url", cfg.OIDC.JWKSEndpoint()), zap.Error(err))
	}
	idp := oidc.NewClient(&cfg.OIDC, logger)

	// 6. BPM 流程引擎
	engine := bpm.NewClient(&cfg.BPM, logger)

	// 7. 依赖注入: Repository → Service → Handler
	deps := service.Deps{
		IdP:      idp,
		Verifier: verifier,
		Engine:   engine,
	}
	if rdb != nil {
		deps.Blacklist = rdb
	}
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, deps, logger)
	h := handler.NewHandler(cfg, svc)

	// 8. 初始化路由
	engineHTTP := router.Setup(cfg, h, verifier, rdb, logger)

	// 9. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engineHTTP,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 10. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 关闭数据库连接
	if closeDB, _ := db.DB(); closeDB != nil {
		closeDB.Close()
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
