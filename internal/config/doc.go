// Package config resolves the deployment environment and the Redis host
// selected for it. Values come from CLI flags, environment variables (with an
// optional .env file) and the per-environment host table in
// <root>/config/redis.yml, with precedence: CLI flags > Environment variables >
// Defaults.
package config
