package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/staybook/booking-api/internal/config"
	"github.com/staybook/booking-api/internal/pkg/jwt"
)

func main() {
	client := flag.String("client", "", "name of the calling service, e.g. payments-gateway")
	role := flag.String("role", jwt.RoleService, "token role: service or admin")
	ttl := flag.Duration("ttl", 0, "token lifetime; defaults to SERVICE_TOKEN_TTL")
	flag.Parse()

	if *client == "" {
		log.Fatal("-client is required")
	}
	if *role != jwt.RoleService && *role != jwt.RoleAdmin {
		log.Fatalf("unsupported role %q", *role)
	}

	cfg := config.Load()
	if !cfg.ServiceAuthEnabled() {
		log.Fatal("SERVICE_TOKEN_SECRET is not set")
	}

	lifetime := cfg.ServiceTokenTTL
	if *ttl > 0 {
		lifetime = *ttl
	}

	token, expiresAt, err := jwt.NewService(cfg.ServiceTokenSecret, lifetime).GenerateServiceToken(*client, *role)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}

	fmt.Printf("client:  %s\nrole:    %s\nexpires: %s\n\n%s\n", *client, *role, expiresAt.Format(time.RFC3339), token)
}
