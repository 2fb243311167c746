package configuration

import "time"

type BackendKind string

const (
	// BackendPostgrest queries a PostgREST-style REST endpoint, forwarding the
	// signed-in user's bearer token with each request so authorization is
	// enforced server-side.
	BackendPostgrest BackendKind = "postgrest"
	// BackendPostgres queries Postgres directly with a fixed connection; the
	// user's token plays no part in authorization.
	BackendPostgres BackendKind = "postgres"
)

type PostgrestConfig struct {
	// Base URL of the REST endpoint, e.g. https://xyz.supabase.co/rest/v1
	BaseUrl string
	// Project API key sent as the apikey header on every request.
	AnonKey string
	// Upper bound on a single request; there are no retries.
	RequestTimeout time.Duration
}

type PostgresConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Connection      map[string]string
}

type AuthConfig struct {
	// Token endpoint base of the identity provider,
	// e.g. https://xyz.supabase.co/auth/v1
	ProviderUrl string
	// API key sent alongside sign-in requests.
	AnonKey string
	// Upper bound on a sign-in request.
	RequestTimeout time.Duration
	// How long an idle session stays valid before the user must sign in again.
	SessionTimeout time.Duration
}

type CacheConfig struct {
	// How long a cached query result stays valid.
	Ttl time.Duration
	// When true, cache keys include a fingerprint of the acting token, so
	// results fetched under one identity are never served to another. When
	// false the cache is shared process-wide across sign-ins, matching the
	// original behavior but allowing data cached under a prior session to be
	// served within the TTL window.
	ScopeToIdentity bool
}

type ExplorerConfiguration struct {
	HttpPort    uint16
	MetricsPort uint16

	Backend   BackendKind
	Postgrest PostgrestConfig
	Postgres  PostgresConfig

	Auth  AuthConfig
	Cache CacheConfig
}
