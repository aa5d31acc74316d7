package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPHeadersExtractor(t *testing.T) {
	e := NewHTTPHeadersExtractor("X-Forwarded-For")

	r := httptest.NewRequest("POST", "/api/contact", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.9")

	key, err := e.Extract(r)
	assert.NoError(t, err)
	assert.Equal(t, "203.0.113.9", key)
}

func TestHTTPHeadersExtractor_MissingHeader(t *testing.T) {
	e := NewHTTPHeadersExtractor("X-Forwarded-For")

	_, err := e.Extract(httptest.NewRequest("POST", "/api/contact", nil))
	assert.Error(t, err)
}

func TestRemoteAddrExtractor(t *testing.T) {
	e := NewRemoteAddrExtractor()

	r := httptest.NewRequest("POST", "/api/contact", nil)
	r.RemoteAddr = "198.51.100.7:49152"

	key, err := e.Extract(r)
	assert.NoError(t, err)
	assert.Equal(t, "198.51.100.7", key)
}

func TestFallbackExtractor(t *testing.T) {
	e := NewFallbackExtractor(NewHTTPHeadersExtractor("X-Forwarded-For"), NewRemoteAddrExtractor())

	r := httptest.NewRequest("POST", "/api/contact", nil)
	r.RemoteAddr = "198.51.100.7:49152"

	key, err := e.Extract(r)
	assert.NoError(t, err)
	assert.Equal(t, "198.51.100.7", key)

	r.Header.Set("X-Forwarded-For", "203.0.113.9")
	key, err = e.Extract(r)
	assert.NoError(t, err)
	assert.Equal(t, "203.0.113.9", key)
}
