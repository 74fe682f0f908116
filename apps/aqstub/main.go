package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/quatton/aquakeys/apps/aqstub/config"
	"github.com/quatton/aquakeys/apps/aqstub/server"
	"github.com/quatton/aquakeys/pkg/aqlog"
)

func main() {
	ctx := context.Background()
	cfg, err := config.ValidateEnv()
	if err != nil {
		log.Fatalf("❌ %v\n", err)
	}

	cfg.Print(log.Printf)

	store, err := server.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to open refresh token store: %v", err)
	}

	srv := server.New(cfg, server.Options{
		Store:      store,
		Logger:     aqlog.NewDefault().Logger,
		RequestLog: true,
	})
	defer srv.Close()

	addr := fmt.Sprintf(":%s", cfg.Port)

	log.Printf("🚀 Stub API starting on %s\n", addr)
	log.Printf("📚 OpenAPI docs: %s/docs\n", cfg.BaseURL)
	log.Printf("📄 OpenAPI spec: %s/openapi.json\n", cfg.BaseURL)

	if err := http.ListenAndServe(addr, srv); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
