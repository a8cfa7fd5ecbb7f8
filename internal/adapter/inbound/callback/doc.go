// Package callback provides the loopback HTTP server that receives the
// result of a login performed in the system browser.
//
// The identity provider redirects the login window to the callback page
// served here. The page posts one message back to the server, which
// republishes it on the in-process message bus tagged with the Origin
// header the browser attached. Whoever waits on the handshake decides
// whether to trust it.
//
// # Endpoints
//
//	GET  /auth-callback.html - Callback page loaded by the login window
//	POST /auth/message       - Message posted by the callback page
//	POST /auth/closed        - Beacon sent when the login window goes away
//	GET  /health             - Health check
//	GET  /metrics            - Prometheus metrics
//
// # Message body
//
//	{"type": "GOOGLE_AUTH_SUCCESS", "handshake": "<id>", "session_token": "<optional>"}
//
// # Middleware Chain
//
//  1. MetricsMiddleware - Records duration and status
//  2. RequestIDMiddleware - Extracts/generates request ID and enriches the logger
//  3. Handler
package callback
