package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.eggybyte.com/settingsx/httpx"
	"go.eggybyte.com/settingsx/optionsx"
)

func TestRouter(t *testing.T) {
	c := registerSample(t, map[string]string{
		"Sample:SampleKey":       "one",
		"Sample:SampleNumber":    "2",
		"Sample:SampleString":    "xyz",
		"Server:allow_origins:0": "https://ui.example",
	})
	server, err := optionsx.MustGet[ServerConfiguration](c).Value()
	require.NoError(t, err)

	router := newRouter(server, map[string]http.Handler{
		"sample": httpx.SlotHandler(optionsx.MustGet[SampleConfiguration](c)),
		"server": httpx.SlotHandler(optionsx.MustGet[ServerConfiguration](c)),
	})

	tests := []struct {
		path   string
		status int
	}{
		{"/settings/server", http.StatusOK},
		{"/settings/Server", http.StatusOK},
		{"/settings/sample", http.StatusServiceUnavailable},
		{"/settings/missing", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set("Origin", "https://ui.example")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "https://ui.example", w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
		})
	}
}
