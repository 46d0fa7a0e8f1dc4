// Package services holds the application logic between the CLI and the
// API client: authentication and session handling, archive browsing with an
// offline fallback, research notes, predictions and the dashboard summary.
//
// Input is validated before any network call; invalid input is reported as
// a *ValidationError carrying one message per field.
package services
