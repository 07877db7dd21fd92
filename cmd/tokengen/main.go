// Command tokengen issues a bearer token for the summarization API using the
// same configuration as the server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/yanqian/text-summarizer/internal/domain/auth"
	"github.com/yanqian/text-summarizer/internal/infra/config"
	"github.com/yanqian/text-summarizer/pkg/logger"
)

func main() {
	subject := flag.String("subject", "", "token subject, usually a client name")
	ttl := flag.Duration("ttl", 0, "override the configured token lifetime")
	flag.Parse()

	if *subject == "" {
		log.Fatal("-subject is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.HTTP.Auth.Secret == "" {
		log.Fatal("AUTH_SECRET is not configured")
	}
	authCfg := auth.Config{
		Secret:   cfg.HTTP.Auth.Secret,
		Issuer:   cfg.HTTP.Auth.Issuer,
		TokenTTL: cfg.HTTP.Auth.TokenTTL,
	}
	if *ttl > 0 {
		authCfg.TokenTTL = *ttl
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	token, err := auth.NewService(authCfg, logger.New()).IssueToken(ctx, *subject)
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(token); err != nil {
		log.Fatalf("encode token: %v", err)
	}
}
