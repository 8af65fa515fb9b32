//go:build integration

// Package containers levanta dependencias reales (Postgres, Redis, Redpanda)
// con testcontainers para los tests de integración (-tags=integration).
package containers
