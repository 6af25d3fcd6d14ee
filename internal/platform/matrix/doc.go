// Package matrix is the Matrix platform pack, built on mautrix.
//
// Each tenant is one Matrix account. Messages go to the room named by room_id,
// or to the tenant's default room. End-to-end encrypted rooms are not supported.
package matrix
