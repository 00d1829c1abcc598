// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for all server-tunable settings.
//
// IMPORTANT: When changing values, only modify this file. All other
// packages should reference these values rather than hard-coding them.
package config

import (
	"os"
	"strconv"
	"strings"
)

// =============================================================================
// PLAY FIELD CONFIGURATION
// =============================================================================

// FieldConfig holds the fixed play-field dimensions and tick rates.
type FieldConfig struct {
	Width           float64 // Play field width in pixels
	Height          float64 // Play field height in pixels
	PhysicsTickRate int     // Physics ticks per second
	NetworkTickRate int     // Network (broadcast) ticks per second
}

// DefaultField returns the default field configuration.
func DefaultField() FieldConfig {
	return FieldConfig{
		Width:           480,
		Height:          270,
		PhysicsTickRate: 60,
		NetworkTickRate: 20,
	}
}

// =============================================================================
// LOBBY & MATCH CONFIGURATION
// =============================================================================

// LobbyConfig controls matchmaking and lifecycle defaults.
type LobbyConfig struct {
	DefaultCapacity   int     // Default max players per lobby
	MinPlayersToStart int     // Minimum players for countdown to begin
	MaxLobbies        int     // Hard cap on concurrent lobbies per process
	IdleTimeoutSec    float64 // Seconds of zero-player inactivity before destroy
	KillTarget        int     // Team score needed to win
	CountdownLongSec  float64 // Countdown duration with 2-7 players
	CountdownShortSec float64 // Countdown duration once lobby is full (8 players)
	FinishedGraceSec  float64 // Seconds a finished lobby lingers before reset
}

// DefaultLobby returns production-safe lobby defaults.
func DefaultLobby() LobbyConfig {
	return LobbyConfig{
		DefaultCapacity:   8,
		MinPlayersToStart: 2,
		MaxLobbies:        100,
		IdleTimeoutSec:    60,
		KillTarget:        50,
		CountdownLongSec:  10,
		CountdownShortSec: 1,
		FinishedGraceSec:  10,
	}
}

// =============================================================================
// INPUT VALIDATION CONFIGURATION
// =============================================================================

// InputConfig controls input acceptance tolerances (anti-cheat surface).
type InputConfig struct {
	MaxSequenceRegression uint32  // Out-of-order sequence tolerance
	MaxClockSkewSec       float64 // Max |clientTime - serverTime| before rejection
	IdleDisconnectSec     float64 // Client idle time before forced removal
	SpawnInvulnerableSec  float64 // Late-join invulnerability window
}

// DefaultInput returns default input-validation tolerances.
func DefaultInput() InputConfig {
	return InputConfig{
		MaxSequenceRegression: 10,
		MaxClockSkewSec:       5,
		IdleDisconnectSec:     30,
		SpawnInvulnerableSec:  3,
	}
}

// =============================================================================
// VISION CONFIGURATION
// =============================================================================

// VisionConfig controls the field-of-view tile grid and cache tuning.
type VisionConfig struct {
	TileSize           float64 // Tile edge length in pixels
	ForwardConeRadius  float64 // Forward cone radius in pixels
	ForwardConeHalfDeg float64 // Forward cone half-angle in degrees
	PeripheralRadius   float64 // Peripheral disc radius in pixels
	ExtensionRadius    float64 // Forward sector extension radius in pixels
	CacheMaxAgeMs      float64 // Max age of a cached vision result
	CacheMoveEpsilonPx float64 // Movement threshold that invalidates cache
	CacheRotEpsilonDeg float64 // Rotation threshold that invalidates cache
}

// DefaultVision returns default vision-system tuning.
func DefaultVision() VisionConfig {
	return VisionConfig{
		TileSize:           8,
		ForwardConeRadius:  100,
		ForwardConeHalfDeg: 60,
		PeripheralRadius:   30,
		ExtensionRadius:    130,
		CacheMaxAgeMs:      100,
		CacheMoveEpsilonPx: 2,
		CacheRotEpsilonDeg: 5,
	}
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP/WS listener settings.
type ServerConfig struct {
	Port              int
	// MaxWSConnTotal and MaxWSConnPerIP are not read by internal/transport,
	// which enforces its own fixed limits (500 total, 10 per IP).
	MaxWSConnTotal    int
	MaxWSConnPerIP    int
	HTTPRatePerSecond float64
	HTTPRateBurst     int

	// ClientOrigins is the CORS/WebSocket-origin allowlist for untrusted
	// rendering clients, parsed from CLIENT_ORIGINS (empty by default).
	// It holds only the configured origins; localhost is not added here.
	ClientOrigins []string
}

// DefaultServer returns default server listener settings.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:              8080,
		MaxWSConnTotal:    800, // 100 lobbies * 8 players
		MaxWSConnPerIP:    10,
		HTTPRatePerSecond: 10,
		HTTPRateBurst:     20,
		ClientOrigins:     []string{},
	}
}

// ServerFromEnv returns server configuration with environment overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()
	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if m := getEnvInt("MAX_WS_CONN_TOTAL", 0); m > 0 {
		cfg.MaxWSConnTotal = m
	}
	if o := os.Getenv("CLIENT_ORIGINS"); o != "" {
		cfg.ClientOrigins = strings.Split(o, ",")
	}
	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Field  FieldConfig
	Lobby  LobbyConfig
	Input  InputConfig
	Vision VisionConfig
	Server ServerConfig
}

// Load returns the complete configuration with environment overrides applied.
func Load() AppConfig {
	return AppConfig{
		Field:  DefaultField(),
		Lobby:  DefaultLobby(),
		Input:  DefaultInput(),
		Vision: DefaultVision(),
		Server: ServerFromEnv(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
