// Package config manages application configuration for the Cigno Platform API.
//
// Configuration is read from environment variables through struct tags
// (cleanenv). A .env file in the working directory is loaded first when
// present, which keeps local development close to the deployed setup.
//
//	cfg, err := config.Load()
//	if err != nil { ... }
//	if err := cfg.Validate(); err != nil { ... }
//
// # Configuration Groups
//
//   - ServerConfig: HTTP server settings (port, timeouts, CORS)
//   - DatabaseConfig: SurrealDB connection string and credentials
//   - JWTConfig: access token signing keys and lifetime
//   - AgentConfig: external custom agent endpoint, key and toggles
//   - CacheConfig: optional Redis cache for agent replies
//   - RateLimitConfig: inbound per-client limits
//
// # Environment Variables
//
//	SERVER_PORT              - HTTP server port (default: 8080)
//	APP_ENV                  - development, production or test
//	DATABASE_URL             - SurrealDB connection string (required)
//	AGENT_BASE_URL           - custom agent API base URL
//	AGENT_API_KEY            - custom agent API key
//	AGENT_ID                 - custom agent identifier
//	DISABLE_REMOTE_ANALYSIS  - skip the agent during project analysis
//	REDIS_URL                - enables the agent reply cache
//	IDEMPOTENCY_TTL          - how long Idempotency-Key replies are kept
package config
