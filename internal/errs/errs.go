// Package errs defines the error types the service returns to its callers.
//
// Two families live here:
//   - HTTPError, the JSON error shape used by the system and usage routes
//     and rendered by the global echo error handler.
//   - DispatchError, the typed taxonomy of the notification dispatch
//     procedure. It is turned into a {statusCode, body} pair exactly once,
//     at the handler boundary.
package errs
