// Package identity implements a small authentication/authorization core:
// credential verification, signed session tokens carrying role claims, and
// an idempotent bootstrap routine that seeds baseline roles and accounts.
//
// Storage:
//   - All mutation authority lives behind the CredentialStore interface
//     (lookup, create, verify, role assignment). A Bun-backed implementation
//     ships with the package; tests can swap in a mock store.
//   - The core holds no state between calls, so concurrent logins and
//     registrations are safe; uniqueness races resolve at the store.
//
// Tokens:
//   - TokenService signs HS256 JWTs over a pre-shared secret sourced from
//     external configuration. Each issued token carries the subject id,
//     username, email, date of birth, a fresh per-issuance session id, the
//     authentication time, and one role entry per role held.
//
// Bootstrap:
//   - Bootstrap.Initialize seeds the {"Administrator", "User"} roles and one
//     default account per role. It is idempotent and safe to run on every
//     process start, including concurrent starts: pre-existence outcomes are
//     swallowed by design.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter used by Auther and
//     Bootstrap to describe login and seeding events. Sinks run best-effort
//     (errors are logged) so you can forward to a database or queue without
//     blocking authentication.
package identity
