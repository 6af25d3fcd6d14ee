// Package platform holds what the social platform packs share: the common Client
// abstraction, normalized Post records, the remote error taxonomy, the JSON HTTP
// helper, and the operation protocol.
//
// # Operation protocol
//
// Every platform operation runs the same steps in order:
//
//  1. token check (auth.ErrAuthentication)
//  2. capability check (auth.ErrAuthorization)
//  3. argument validation (tools.ErrInvalidArgument)
//  4. tenant client lookup (tenants.ErrUnregisteredTenant)
//  5. remote call (*RemoteError, matching ErrRemoteAPI)
//  6. normalization (ErrNotFound when expected data is missing)
//
// Begin covers steps 1 to 3. PostTool and TimelineTool build complete tools for
// the common publish and read shapes; platform packages write the rest by hand.
// No step retries.
//
// # Clients
//
// Production clients live in the subpackages (twitter, facebook, instagram,
// linkedin, matrix). Each exposes an API interface that embeds Client, so tests
// substitute fakes by handing the tenant cache a different Factory.
package platform
