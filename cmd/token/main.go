// Command token mints an admin JWT for the protected routes.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"kline_service/internal/app/config"
	jwtmw "kline_service/internal/platform/jwt"
)

func main() {
	subject := flag.String("sub", "admin", "token subject")
	ttl := flag.Duration("ttl", 0, "token lifetime (default auth.token_ttl)")
	flag.Parse()

	cfg, err := config.Load("")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	exp := cfg.Auth.TokenTTL
	if *ttl > 0 {
		exp = *ttl
	}

	token, err := jwtmw.NewGenerator(cfg.Auth.JWTSecret, exp).GenerateToken(*subject)
	if err != nil {
		slog.Error("failed to generate token", "error", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
