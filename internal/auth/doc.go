// Package auth provides account identity, password hashing, and session
// tokens for the Hospilock API.
//
// Users and admins share one Account shape but live in separate store
// namespaces ("user:{email}" vs "admin:{email}"): the same email can be
// registered as both, with independent passwords. Emails are lowercased on
// every path, so lookups are case-insensitive.
//
// Session tokens are stateless HS256 JWTs carried in an HTTP-only cookie.
// There is no server-side revocation: sign-out clears the cookie and a
// leaked token remains valid until expiry. That trade-off is accepted for
// the short user TTL; rotate the signing secret to invalidate everything.
package auth
