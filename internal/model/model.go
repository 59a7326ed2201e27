// Package model holds the domain types shared by the service, repository
// and handler layers: protocols, inbound notification requests, usage
// records and dispatch results.
package model
