package main

import (
	"context"
	"log"
	"net"
	"os/signal"
	"syscall"

	"github.com/cheeseechops/CamdramAPI/internal/config"
	"github.com/cheeseechops/CamdramAPI/internal/corpusaccess"
	"github.com/cheeseechops/CamdramAPI/internal/grpcserver"
	"github.com/cheeseechops/CamdramAPI/internal/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := corpusaccess.NewLogger(cfg, "grpc-server")
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	access, err := corpusaccess.Open(cfg)
	if err != nil {
		log.Fatalf("open corpus: %v", err)
	}
	defer access.Close()

	listener, err := net.Listen("tcp", cfg.Server.GRPCBind)
	if err != nil {
		log.Fatalf("grpc listen failed: %v", err)
	}

	cache := access.NewCache(logger, nil)
	grpcServer := grpcserver.NewGRPCServer(grpcserver.NewServer(cache, cfg.Leaderboards, logger))

	go func() {
		<-ctx.Done()
		logger.Info("grpc server shutting down")
		grpcServer.GracefulStop()
	}()

	logger.Info("gRPC server listening",
		logging.String("addr", cfg.Server.GRPCBind),
		logging.String("corpus", access.Source.Name()))
	if err := grpcServer.Serve(listener); err != nil {
		logger.Error("grpc server stopped", logging.Error(err))
	}
}
