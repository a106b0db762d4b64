package app

import (
	"testing"

	"github.com/paperlab/core/internal/config"
	"github.com/stretchr/testify/require"
)

func TestExtractOriginHost(t *testing.T) {
	require.Equal(t, "app.example.com", extractOriginHost("https://app.example.com"))
	require.Equal(t, "localhost:3000", extractOriginHost("http://localhost:3000"))
	require.Equal(t, "not a url", extractOriginHost("not a url"))
	require.Equal(t, "app.example.com", extractOriginHost("app.example.com"))
}

func TestMatchOriginPattern(t *testing.T) {
	require.True(t, matchOriginPattern("app.example.com", "app.example.com"))
	require.True(t, matchOriginPattern("*.example.com", "app.example.com"))
	require.False(t, matchOriginPattern("*.example.com", "example.org"))
	require.True(t, matchOriginPattern("localhost:*", "localhost:3000"))
	require.False(t, matchOriginPattern("localhost:*", "remotehost:3000"))
}

func TestBuildCORSConfig(t *testing.T) {
	prod := &config.AppConfig{Env: "production", AllowedOrigins: []string{"*.example.com"}}
	cc := buildCORSConfig(prod)
	require.True(t, cc.AllowOriginFunc("https://app.example.com"))
	require.False(t, cc.AllowOriginFunc("https://evil.org"))

	dev := &config.AppConfig{Env: "development", AllowedOrigins: []string{"*.example.com"}}
	cc = buildCORSConfig(dev)
	require.True(t, cc.AllowOriginFunc("https://anything.local"))

	open := &config.AppConfig{Env: "production"}
	cc = buildCORSConfig(open)
	require.True(t, cc.AllowOriginFunc("https://anything.local"))
}
