// Package handler provides the HTTP request handlers for the paywire
// gateway service.
//
// The handlers bridge the REST surface to the provider layer:
//
//   - PaymentHandler: transaction operations (purchase, authorize, capture,
//     credit, void, inquiry, recurring, vault)
//   - ConfigHandler: tenant credential management
//   - LogsHandler: transaction log queries
//   - HealthHandler: service and dialect health
//
// Multi-tenant requests carry an X-Tenant-ID header; the middleware places
// it in the request context so logging routes to per-tenant indices.
package handler
