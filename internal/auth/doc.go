// Package auth validates capability tokens for herald-gateway.
//
// # Claims
//
// A token resolves to Claims: the principal that presented it and the set of
// capability strings it grants (e.g. "twitter.read", "facebook.post"). Claims are
// derived from the token on every operation call and are never cached.
//
// # Validators
//
// Validation is pluggable through the Validator interface:
//
//   - JWTValidator: HS256 tokens signed with auth.jwt_secret. The principal is the
//     "sub" claim and capabilities are the "caps" array. Expiry is enforced.
//
//   - StaticValidator: fixed tokens configured as bcrypt hashes under
//     auth.static_tokens. Use HashToken (or `herald-gateway hash-token`) to produce
//     the hash.
//
//   - Chain: tries several validators in order.
//
// # Operation protocol
//
// Every platform operation starts with:
//
//	claims, err := auth.Authorize(validator, args.Token(), "twitter.read")
//
// which fails with an error matching ErrAuthentication when the token is missing or
// invalid, and with a *CapabilityError matching ErrAuthorization when the capability
// is absent. Both checks happen before any tenant state is touched.
//
// # HTTP
//
// BearerToken extracts the Authorization header token. OptionalClaims attaches
// claims to the request context for capability-filtered tool discovery.
package auth
