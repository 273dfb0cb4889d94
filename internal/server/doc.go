// Package server provides the HTTP plumbing behind the local web front.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
// Routes may add their own middleware, which runs inside the router-wide stack; route guards are attached this way.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns, so "GET /movie/{id}" and
// "POST /login" style registrations work and [http.Request.PathValue] is available to handlers.
//
// # Middleware
//
// [WithRequestID] tags requests, [Logging] writes one charm log line per request and [Recover] converts panics into 500s.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
