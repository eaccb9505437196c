package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
	"github.com/spf13/pflag"

	"resume-docx-go/internal/api/handler"
	"resume-docx-go/internal/api/router"
	"resume-docx-go/internal/config"
	"resume-docx-go/internal/constants"
	appCoreLogger "resume-docx-go/internal/logger"
	"resume-docx-go/internal/session"
	"resume-docx-go/internal/storage"
	"resume-docx-go/internal/tracing"
)

func main() {
	var configPath string
	var writeSample string
	pflag.StringVarP(&configPath, "config", "c", "", "Path to config file")
	pflag.StringVar(&writeSample, "write-sample-config", "", "Write a sample config to the given path and exit")
	pflag.Parse()

	if writeSample != "" {
		if err := config.CreateSampleConfig(writeSample); err != nil {
			appCoreLogger.Fatal().Err(err).Msg("写入示例配置失败")
		}
		appCoreLogger.Info().Str("path", writeSample).Msg("示例配置已写入")
		return
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		appCoreLogger.Fatal().Err(err).Msg("加载配置失败")
	}
	initLogger(cfg)
	glog.Infof("配置加载成功, %s %s", constants.AppName, constants.AppVersion)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing)
	if err != nil {
		glog.Fatalf("初始化链路追踪失败: %v", err)
	}

	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		glog.Fatalf("初始化存储失败: %v", err)
	}
	defer storageManager.Close()
	glog.Info("存储服务初始化成功")

	conv := session.ConverterFromConfig(ctx, cfg)
	manager := session.NewManager(conv, storageManager.Store, storageManager.Sink)
	sessionHandler := handler.NewSessionHandler(manager, cfg.Server.MaxUploadMB)

	tracer, tracerCfg := hertztracing.NewServerTracer()
	h := server.New(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
		// multipart 头部和其他字段留出余量
		server.WithMaxRequestBodySize((cfg.Server.MaxUploadMB+1)<<20),
		tracer,
	)
	h.Use(hertztracing.ServerMiddleware(tracerCfg))

	router.RegisterRoutes(h, sessionHandler, cfg.Server.APIKey)
	glog.Info("HTTP路由注册成功")
	if cfg.Server.APIKey == "" {
		glog.Warn("未配置 api_key，会话接口无需认证")
	}

	glog.Infof("HTTP 服务器启动中，监听地址: %s", cfg.Server.Address)
	go func() {
		if err := h.Run(); err != nil {
			glog.Fatalf("启动HTTP服务器失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	glog.Info("接收到终止信号，正在优雅退出...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		glog.Errorf("服务器关闭失败: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		glog.Errorf("关闭链路追踪失败: %v", err)
	}
	glog.Info("优雅退出完成")
}

// initLogger 初始化应用日志，并让 Hertz 的 hlog 走同一个 zerolog 实例
func initLogger(cfg *config.Config) {
	appCoreLogger.Init(appCoreLogger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	})

	glog.SetLogger(hertzadapter.From(appCoreLogger.Logger))
	switch cfg.Logger.Level {
	case "debug":
		glog.SetLevel(glog.LevelDebug)
	case "warn":
		glog.SetLevel(glog.LevelWarn)
	case "error":
		glog.SetLevel(glog.LevelError)
	default:
		glog.SetLevel(glog.LevelInfo)
	}
}
