package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"pulse-lab/auth"
	"pulse-lab/domain"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

type Config struct {
	JWTSecret         string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Token error: %v\n", err)
	}
	os.Exit(code)
}

// run mints a development token signed with the server secret.
func run() (int, error) {
	user := flag.String("user", "", "User id carried by the token")
	name := flag.String("name", "", "Display name, defaults to the user id")
	flag.Parse()

	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if *user == "" {
		return exitConfig, fmt.Errorf("-user is required")
	}
	if *name == "" {
		*name = *user
	}

	token, err := auth.NewTokenManager(config.JWTSecret, config.AuthTokenDuration).
		GenerateToken(domain.Identity{UserID: domain.UserID(*user), DisplayName: *name})
	if err != nil {
		return exitRuntime, err
	}
	fmt.Println(token)
	return exitOK, nil
}
