// Package handler is the HTTP layer between the router and the services.
//
// NotificationHandler is the request handler shared by the HTTP server and
// the Lambda entry point; its Handle method knows nothing about echo. The
// other handlers use the typed echo pipeline in base.go.
package handler
