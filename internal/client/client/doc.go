// Package client talks to the remote fraud-detection service.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface):
//     Login/Register, Predict, ModelInfo, DatasetInfo, plus Health,
//     TrainFromCSV, CurrentUser and Users.
//  2. A JSON-over-HTTP implementation (see HTTPClient) that attaches the
//     bearer token from a TokenSource, tags every call with a request id and
//     runs the OnUnauthorized hook on any 401 before returning.
//
// # Error Handling
//
// Every failure is a *ServiceError carrying the HTTP status and the message
// the service sent. Callers match the two interesting classes with errors.Is:
// ErrUnauthorized (401) and ErrUnavailable (transport failure, status 0).
// Nothing is retried.
//
// All operations accept context.Context and honour cancellation/timeouts.
package client
