package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/voshodshop/cartengine/internal/config"
	"github.com/voshodshop/cartengine/internal/repository/remote"
	"github.com/voshodshop/cartengine/internal/service"
	"github.com/voshodshop/cartengine/internal/session"
	"github.com/voshodshop/cartengine/internal/storefront"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/normalize-address/main.go <address>")
		fmt.Println("Example: go run cmd/normalize-address/main.go \"Москва, ул. Тверская, д. 7\"")
		os.Exit(1)
	}

	rawAddress := strings.Join(os.Args[1:], " ")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	client, err := storefront.NewClient(cfg.Storefront, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create storefront client: %v\n", err)
		os.Exit(1)
	}

	repos := remote.NewRepositories(client, logger)
	normalizer := service.NewAddressService(repos, session.New(), logger)

	fmt.Printf("🔍 Normalizing: %s\n\n", rawAddress)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Storefront.RequestTimeout)
	defer cancel()

	addr, err := normalizer.Normalize(ctx, rawAddress)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Normalization failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ %s\n", service.FormatAddress(*addr))
	if addr.Index == "" {
		fmt.Println("⚠️  No postal index found in the normalized address")
		return
	}
	fmt.Printf("   Postal index: %s\n", addr.Index)
}
