// Package tenants caches authenticated platform clients per tenant.
//
// Each platform owns one Cache. A Cache maps a tenant id to a client handle built
// by the platform's Factory from validated Credentials:
//
//	cache, _ := tenants.NewCache(tenants.Config[twitter.Credentials, *twitter.Handle]{
//		Platform: "twitter",
//		Factory:  twitter.NewFactory(httpClient, ""),
//	})
//	err := cache.Register("agent-1", twitter.Credentials{BearerToken: "..."})
//	handle, err := cache.Get("agent-1")
//
// # Concurrency
//
// Handles are built outside the lock and inserted under the write lock, so readers
// never observe a partially constructed handle and lookups of existing tenants only
// take the read lock. Registering an existing tenant replaces its handle.
//
// # Implicit registration
//
// A Source lets the cache build handles on first lookup, typically from
// environment variables such as FB_ACCESS_TOKEN_<TENANT>. Concurrent first lookups
// for the same tenant share one construction through singleflight, and an explicit
// Register that completes first is never overwritten.
package tenants
