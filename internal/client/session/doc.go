// Package session owns the client's authentication state: the bearer token,
// the identity it belongs to, and whether that pairing has been validated.
//
// A Manager is created once per process. NewManager restores a persisted
// token and leaves the session in the loading state; Initialize validates the
// restored token against the API exactly once. Login, Logout and
// InvalidateToken are the only transitions afterwards. The network layer
// reads the token through Token and reports 401 responses back through
// InvalidateToken.
//
// Observers registered with Subscribe receive a State snapshot after every
// transition. Token and User always change together, so no snapshot carries a
// token without its user once loading has finished.
package session
