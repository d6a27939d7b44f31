package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"foosball/config"
	"foosball/logger"
	"foosball/server"
)

// foosball broker 入口：WebSocket 会话服务 + 管理与监控接口
func main() {
	var (
		cfgPath string
		addr    string
	)
	flag.StringVar(&cfgPath, "config", "foosball.yaml", "path to the YAML config file (optional)")
	flag.StringVar(&addr, "addr", "", "server listen address, e.g. :3001 (overrides config)")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		panic(err)
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	// zap 日志写入滚动文件
	if err := logger.Init(logger.Options{File: cfg.Log.File, Level: cfg.Log.Level, Console: cfg.Log.Console}); err != nil {
		panic(err)
	}
	defer logger.Sync()

	opts := server.HubOptions{
		Link: server.LinkConditions{
			DelayMinMs: cfg.Link.DelayMinMs,
			DelayMaxMs: cfg.Link.DelayMaxMs,
			DropProb:   cfg.Link.DropProb,
		},
	}
	if cfg.NATS.URL != "" {
		pub, err := server.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.SubjectPrefix)
		if err != nil {
			logger.Log.Warnf("match events disabled: %v", err)
		} else {
			defer pub.Close()
			opts.Publisher = pub
			logger.Log.Infof("publishing match events to %s under %s", cfg.NATS.URL, cfg.NATS.SubjectPrefix)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := server.NewHub(opts)
	go hub.Run(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.HandleWS)
	// 管理与监控接口
	mux.HandleFunc("/metrics", hub.HandleMetrics)
	mux.HandleFunc("/admin/rooms", hub.HandleRooms)
	mux.HandleFunc("/admin/link", hub.HandleLinkConfig)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	handler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: false,
	}).Handler(mux)

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: handler}

	go func() {
		logger.Log.Infof("foosball broker listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalf("listen: %v", err)
		}
	}()

	// 优雅退出（Ctrl+C）
	<-ctx.Done()
	logger.Log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Warnf("http shutdown: %v", err)
	}
	<-hub.Done()
}
