package http

import nethttp "net/http"

// NewRouter mounts the API handler at the root. Kept as its own seam so the
// server can wrap the whole tree in middleware and tests can swap handlers.
func NewRouter(api nethttp.Handler) nethttp.Handler {
	mux := nethttp.NewServeMux()
	mux.Handle("/", api)
	return mux
}
