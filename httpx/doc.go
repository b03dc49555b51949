// Package httpx serves settings slots over HTTP.
//
// # Overview
//
// SlotHandler exposes the current value of one optionsx slot as JSON and
// turns an invalid value into a 503 response listing the failed rules.
// WriteError maps core/errors codes onto HTTP statuses so registration and
// validation errors read the same over HTTP as they do in logs.
//
// # Features
//
//   - Slot handlers with coded error responses
//   - Security headers middleware with sane defaults
//   - CORS middleware driven by settings values
//
// # Layer
//
// httpx depends on core and optionsx.
package httpx
