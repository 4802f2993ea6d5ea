package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"anchor-editor-server/internal/config"
	"anchor-editor-server/internal/filesystem"
	"anchor-editor-server/internal/lock"
	"anchor-editor-server/internal/logging"
	"anchor-editor-server/internal/mcp"
	"anchor-editor-server/internal/service"
	"anchor-editor-server/internal/transport"
)

func main() {
	cfg := config.ParseFlags()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Debug)
	logger.Info("starting anchor-editor",
		"dir", cfg.WorkingDirectory,
		"transport", cfg.Transport,
		"max_file_size_mb", cfg.MaxFileSizeMB,
		"timeout_sec", cfg.OperationTimeoutSec)

	fsAdapter := filesystem.NewDefaultFileSystemAdapter()
	lockManager := lock.NewLockManager()
	fileService, err := service.NewDefaultFileOperationService(fsAdapter, lockManager, cfg)
	if err != nil {
		logger.Error("failed to initialize file operation service", "error", err)
		os.Exit(1)
	}
	processor := mcp.NewMCPProcessor(fileService)

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)
	serverDone := make(chan error, 1)

	var httpHandler *transport.HTTPHandler
	switch cfg.Transport {
	case "http":
		httpHandler = transport.NewHTTPHandler(fileService, processor, logger)
		go func() {
			serverDone <- httpHandler.StartServer(cfg.Port)
		}()
	case "stdio":
		stdioHandler := transport.NewStdioHandler(fileService, processor, logger)
		go func() {
			serverDone <- stdioHandler.Start(os.Stdin, os.Stdout)
		}()
	default:
		logger.Error("unsupported transport", "transport", cfg.Transport)
		os.Exit(1)
	}

	select {
	case sig := <-shutdownChan:
		logger.Info("shutdown signal received", "signal", sig.String())
		if httpHandler != nil {
			ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.OperationTimeoutSec)*time.Second)
			defer cancel()
			if err := httpHandler.Shutdown(ctx); err != nil {
				logger.Error("http shutdown error", "error", err)
			}
		}
		// The stdio handler stops on stdin EOF; process exit covers the rest.
	case err := <-serverDone:
		if err != nil {
			logger.Error("transport stopped with error", "error", err)
			os.Exit(1)
		}
		logger.Info("transport stopped")
	}
}
