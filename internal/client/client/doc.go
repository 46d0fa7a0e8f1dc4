// Package client contains the client-side building blocks that talk to the
// outside world: the REST API client and the local SQLite bootstrap.
//
// # API client
//
// HTTPClient implements Client over net/http. Every request carries the
// current bearer token (read from a TokenSource), a fresh X-Request-ID and a
// per-request timeout. Idempotent GETs are retried once with backoff on
// transport failures and 502/503/504 responses.
//
// A 401 on any authenticated request is reported to the UnauthorizedHandler
// together with the token that request used, then returned as
// ErrUnauthorized. Login and signup are sent anonymously; their 401 is
// ErrInvalidCredentials and never ends a session.
//
// # Error Handling
//
// Non-2xx responses are returned as *APIError, which unwraps to one of the
// sentinel errors (ErrUnauthorized, ErrInvalidCredentials, ErrNotFound,
// ErrUnavailable) where one applies. Transport failures are ErrUnavailable.
//
// # Local store
//
// InitDatabase opens the SQLite file with the pure-Go modernc driver and
// applies the embedded goose migrations.
package client
