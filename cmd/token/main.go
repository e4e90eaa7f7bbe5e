// Command token mints a JWT for calling the attendance service locally.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"chronoManager/internal/auth"
	"chronoManager/internal/config"
)

func main() {
	email := flag.String("email", "", "user email the token identifies (required)")
	role := flag.String("role", "employee", "role claim")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime; 0 for no expiry")
	flag.Parse()

	if *email == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadWithDefaults()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	tok, err := auth.SignToken(cfg.Auth.JWTSecret, *email, *role, *ttl)
	if err != nil {
		log.Fatalf("sign token: %v", err)
	}
	fmt.Println(tok)
}
