package main

import (
	"fmt"
	"os"

	"github.com/arnavshah/roster-compliance-go/pkg/auth"
	"github.com/arnavshah/roster-compliance-go/pkg/config"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: keygen <name> <restaurant_id|*>")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if cfg.APIMasterSecret == "" {
		fmt.Println("Error: API_MASTER_SECRET not found in environment or .env")
		os.Exit(1)
	}

	name, restaurant := os.Args[1], os.Args[2]
	m := auth.NewManager(cfg.JWTSecret, cfg.APIMasterSecret, cfg.AccessTokenTTL())
	fmt.Printf("Generated Key for %s (%s):\n%s\n", name, restaurant, m.GenerateKey(name, restaurant))
}
