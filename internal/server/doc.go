// Package server provides HTTP routing, middleware, and the band search handlers.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses gorilla/mux internally for path variables and method matching. Its middleware
// wraps the whole router so unmatched requests are logged and rate limited too.
//
// # Endpoints
//
// [BandHandler] serves:
//   - GET /api/bands/search?q=&debug=1&limit= : resolved results, plus search_method, variants_tried,
//     result_count and attempts in debug mode
//   - GET /api/bands/{id} : a single band
//   - GET /healthz : database reachability
//
// Store failures are logged and reported to clients as a generic 500 so internal details never leak.
//
// # Middleware
//
// [Logging], [Recover] and [RateLimit] cover request logs, panic recovery, and a shared token bucket that answers
// 429 when empty.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, registering multiple routes on the router to encapsulate route
// definitions within the implementation.
package server
