// Package authserver exposes an [authclient.Client] over HTTP so the remote
// client has a real peer to talk to.
//
// Routes:
//
//	POST /v1/auth/login     LoginRequest    -> 200 LoginResponse
//	POST /v1/auth/register  RegisterRequest -> 201 RegisterResponse
//	POST /v1/invites        InviteRequest   -> 201 InviteResponse
//	GET  /healthz                           -> 200
//
// Failures carry an [ErrorBody] and a status derived from the authclient
// error: 401 invalid credentials, 409 account exists, 400/422 rejected,
// 429 rate limited, 503 unavailable.
package authserver
