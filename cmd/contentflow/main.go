package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/microcosm-cc/bluemonday"

	"github.com/socialme/contentflow/internal/api"
	"github.com/socialme/contentflow/internal/common"
	"github.com/socialme/contentflow/internal/crawler"
	"github.com/socialme/contentflow/internal/generator"
	"github.com/socialme/contentflow/internal/llm"
	"github.com/socialme/contentflow/internal/metrics"
	"github.com/socialme/contentflow/internal/sqlite"
	"github.com/socialme/contentflow/internal/tone"
	"github.com/socialme/contentflow/internal/workflow"
)

func main() {
	logger := common.Logger()

	if err := godotenv.Load(); err != nil {
		logger.Warn("contentflow: .env file not loaded", "error", err)
	} else {
		logger.Info("contentflow: environment loaded from .env")
	}

	addr := flag.String("addr", envOr("CONTENTFLOW_ADDR", ":8080"), "listen address")
	storeBackend := flag.String("store-backend", envOr("CONTENTFLOW_STORE", "file"), "workflow store backend: file or sqlite")
	storePath := flag.String("store", envOr("CONTENTFLOW_STORE_PATH", defaultStorePath()), "store location (directory for file, database path for sqlite)")
	uploadRoot := flag.String("upload-root", strings.TrimSpace(os.Getenv("CONTENTFLOW_UPLOAD_ROOT")), "directory for uploaded avatar files")
	crawlTimeout := flag.Duration("crawl-timeout", 30*time.Second, "per-URL crawl timeout")
	callTimeout := flag.Duration("call-timeout", 90*time.Second, "timeout for a single adapter call")
	flag.Parse()

	logger.Info("contentflow: startup initiated", "addr", *addr, "backend", *storeBackend, "store", *storePath)

	store, err := openStore(*storeBackend, *storePath)
	if err != nil {
		logger.Error("contentflow: store initialization failed", "error", err)
		fmt.Println("store error:", err)
		os.Exit(1)
	}
	defer store.Close()

	provider := llm.NewProvider()
	logger.Info("contentflow: llm provider ready", "provider", provider.Name())

	managerCfg := workflow.DefaultConfig()
	if trimmed := strings.TrimSpace(*uploadRoot); trimmed != "" {
		managerCfg.UploadRoot = trimmed
	}
	if *callTimeout > 0 {
		managerCfg.CallTimeout = *callTimeout
	}

	manager, err := workflow.NewManager(
		store,
		crawler.New(*crawlTimeout),
		tone.New(provider),
		generator.New(provider),
		bluemonday.StrictPolicy(),
		&managerCfg,
	)
	if err != nil {
		logger.Error("contentflow: manager construction failed", "error", err)
		fmt.Println("manager error:", err)
		os.Exit(1)
	}

	server, err := api.NewServer(manager, metrics.New())
	if err != nil {
		logger.Error("contentflow: server construction failed", "error", err)
		fmt.Println("server error:", err)
		os.Exit(1)
	}

	logger.Info("contentflow: server listening", "addr", *addr, "health", "/health")
	fmt.Printf("Serving on %s\n", *addr)
	if err := http.ListenAndServe(*addr, server); err != nil {
		logger.Error("contentflow: server stopped", "error", err)
		fmt.Println("server stopped:", err)
	}
}

func openStore(backend, path string) (workflow.Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", "file":
		return workflow.NewFileStore(path)
	case "sqlite":
		return sqlite.Open(path)
	default:
		return nil, fmt.Errorf("unknown store backend %q (file or sqlite)", backend)
	}
}

func defaultStorePath() string {
	return filepath.Join("data", "workflows")
}

func envOr(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
