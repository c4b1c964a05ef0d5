// Package auth provides credentials, tokens, and role checks for Gatehouse Core.
//
// It covers:
//   - a three-role model (admin, staff, user) expressed as a single Role type
//   - bcrypt password hashing at a configurable work factor
//   - HS256 bearer tokens with an expiry, issued and verified by TokenService
//   - a stateless Gate that authenticates a bearer token and checks roles
//
// Username uniqueness is enforced by the users table's UNIQUE index; Store
// never checks for an existing username before inserting.
//
// Issued tokens are not revocable. Deleting a user or changing their role
// takes effect for new logins only; existing tokens stay valid until expiry.
package auth
