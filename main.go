package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roversign-go/internal/client"
	"roversign-go/internal/config"
	"roversign-go/internal/handler"
	"roversign-go/internal/logger"
	"roversign-go/internal/repository"
	"roversign-go/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	zlog, err := logger.New(&cfg.Log)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer zlog.Sync()

	// 设置Gin模式
	gin.SetMode(gin.ReleaseMode)

	// 初始化数据库
	db, err := repository.NewDatabase(&cfg.Database, zlog)
	if err != nil {
		zlog.Fatal("初始化数据库失败", zap.Error(err))
	}
	defer db.Close()

	// 初始化仓库
	userRepo := repository.NewUserRepository(db.GetDB(), zlog)
	signRepo := repository.NewSignRepository(db.GetDB(), zlog)
	optionRepo := repository.NewOptionRepository(db.GetDB(), zlog)
	if err := optionRepo.EnsureDefaults(); err != nil {
		zlog.Fatal("初始化签到配置失败", zap.Error(err))
	}

	// 初始化库街区客户端与各服务
	kuroClient := client.NewKuroClient(cfg.Kuro.BaseURL, cfg.Kuro.RateLimitQPS, userRepo, zlog)
	signSvc := service.NewSignService(kuroClient, signRepo, zlog)
	bbsSvc := service.NewBBSService(kuroClient, signRepo, zlog)
	autoSignSvc := service.NewAutoSignService(userRepo, signRepo, optionRepo, kuroClient, signSvc, bbsSvc, zlog)
	broadcaster := service.NewWebhookBroadcaster(cfg.Broadcast.WebhookURL, zlog)

	// 启动定时任务
	cronSvc := service.NewCronService(autoSignSvc, optionRepo, broadcaster, zlog)
	if err := cronSvc.Start(); err != nil {
		zlog.Fatal("启动定时任务失败", zap.Error(err))
	}
	defer cronSvc.Stop()

	// 创建路由
	router := gin.Default()
	router.Use(handler.CORSMiddleware())

	// 健康检查端点
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   "roversign-go",
			"version":   "1.0.0",
		})
	})

	// 基础信息端点
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message":    "鸣潮自动签到 API 服务",
			"version":    "1.0.0",
			"tech_stack": "Go + MySQL",
			"endpoints": gin.H{
				"sign": "/api/sign",
			},
		})
	})

	adminAuth := handler.AdminKeyMiddleware(cfg.Broadcast.AdminKey)
	signHandler := handler.NewSignHandler(autoSignSvc, cronSvc, signRepo, userRepo, optionRepo, broadcaster, zlog)

	api := router.Group("/api")
	{
		signHandler.RegisterRoutes(api, adminAuth)
	}

	// 创建HTTP服务器
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 在goroutine中启动服务器
	go func() {
		zlog.Info("🚀 服务器启动成功",
			zap.String("port", cfg.Server.Port),
			zap.String("url", fmt.Sprintf("http://localhost:%s", cfg.Server.Port)))

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("服务器启动失败", zap.Error(err))
		}
	}()

	// 等待中断信号优雅关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("服务器正在关闭...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zlog.Fatal("服务器强制关闭", zap.Error(err))
	}

	zlog.Info("服务器已关闭")
}
