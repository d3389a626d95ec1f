package config

import (
	"os"
	"time"
)

// JWTSecret verifies the bearer tokens the desk receives. It must match the
// secret the journal backend signs with.
var JWTSecret []byte
var JWTLeeway time.Duration

func init() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "your-secret-key-change-this-in-production"
	}
	JWTSecret = []byte(secret)
	JWTLeeway = 30 * time.Second
}
