package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"campusvote/internal/gateway/fabric"
)

// Gateway captures everything the gateway binary needs from its environment.
type Gateway struct {
	Addr          string
	JWTSigningKey string
	JWTIssuer     string
	TokenTTL      time.Duration

	// RedisAddr selects the shared lockout store; empty means in-memory.
	RedisAddr        string
	LockoutThreshold int
	LockoutWindow    time.Duration

	Fabric fabric.Config
}

// FromEnv builds a Gateway config from environment variables so main stays lean.
func FromEnv() (Gateway, error) {
	cfg := Gateway{
		Addr:             envOr("GATEWAY_ADDR", ":8080"),
		JWTSigningKey:    os.Getenv("JWT_SIGNING_KEY"),
		JWTIssuer:        envOr("JWT_ISSUER", "campusvote"),
		TokenTTL:         time.Hour,
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		LockoutThreshold: 5,
		LockoutWindow:    15 * time.Minute,
		Fabric: fabric.Config{
			PeerEndpoint: envOr("FABRIC_PEER_ENDPOINT", "localhost:7051"),
			GatewayPeer:  os.Getenv("FABRIC_GATEWAY_PEER"),
			TLSCertPath:  os.Getenv("FABRIC_TLS_CERT_PATH"),
			MSPID:        envOr("FABRIC_MSP_ID", "Org1MSP"),
			CertPath:     os.Getenv("FABRIC_CERT_PATH"),
			KeyPath:      os.Getenv("FABRIC_KEY_PATH"),
			Channel:      envOr("FABRIC_CHANNEL", "mychannel"),
			Chaincode:    envOr("FABRIC_CHAINCODE", "voting"),
		},
	}

	if cfg.JWTSigningKey == "" {
		return Gateway{}, fmt.Errorf("JWT_SIGNING_KEY is required")
	}

	if v := os.Getenv("TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return Gateway{}, fmt.Errorf("parsing TOKEN_TTL: %w", err)
		}
		cfg.TokenTTL = ttl
	}
	if v := os.Getenv("LOCKOUT_THRESHOLD"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Gateway{}, fmt.Errorf("parsing LOCKOUT_THRESHOLD: %w", err)
		}
		cfg.LockoutThreshold = n
	}
	if v := os.Getenv("LOCKOUT_WINDOW"); v != "" {
		window, err := time.ParseDuration(v)
		if err != nil {
			return Gateway{}, fmt.Errorf("parsing LOCKOUT_WINDOW: %w", err)
		}
		cfg.LockoutWindow = window
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
