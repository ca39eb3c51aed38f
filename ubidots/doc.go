// Package ubidots is the telemetry relay: a small client for the Ubidots v1.6
// REST API that uploads single values and batches of values.
//
// A Client is created by NewClient, which exchanges the API key for a bearer
// token exactly once. The token is cached for the life of the Client and never
// refreshed. After NewClient returns, the session is read-only, so the client
// may be shared with any number of goroutines.
//
// Uploads are best effort. A failed upload returns an error wrapping
// ErrUploadFailed and the sample is not retried or queued.
//
// Endpoints:
//
//	POST {base}/auth/token              X-Auth-Token: /<api key>, empty body -> {"token": "..."}
//	POST {base}/variables/{id}/values   {"value": 4, "timestamp": 1700000000000}
//	POST {base}/collections/values      [{"variable": "id", "value": 4}, ...]
package ubidots
