// Package server provides the HTTP API used by browser front ends: login, signup, the plan
// catalog and the mock subscription checkout.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Endpoints
//
//	POST /api/auth/login              → {success, message, user}
//	POST /api/auth/signup             → 201 {success, message, user}
//	GET  /api/subscription/plans      → {success, plans}
//	POST /api/subscription/subscribe  → {success, message, user, subscription}
//	GET  /api/health                  → {success}
//
// Every response uses the [models.Response] envelope. Errors set success to false and carry a
// message safe to show a viewer; internal failures are logged and reported as a bare 500.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
