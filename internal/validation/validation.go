// Package validation binds and validates request payloads for the typed
// echo routes.
//
// Rules live in `validate` struct tags; failures come back as a 400
// *errs.HTTPError with one FieldError per failing field.
package validation
