// Package lib groups integrations that do not belong to a layer: delivery
// channel drivers (lib/channel) and the Resend email client (lib/email).
package lib
