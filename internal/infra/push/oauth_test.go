package push

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPrivateKeyPEM(t *testing.T) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	block := &pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}
	return string(pem.EncodeToMemory(block))
}

func TestServiceAccountTokenSource_ExchangesAndCaches(t *testing.T) {
	// Arrange
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "urn:ietf:params:oauth:grant-type:jwt-bearer", r.Form.Get("grant_type"))
		assert.NotEmpty(t, r.Form.Get("assertion"))
		_, _ = w.Write([]byte(`{"access_token":"at-1","expires_in":3600,"token_type":"Bearer"}`))
	}))
	defer server.Close()

	source := NewServiceAccountTokenSource(ServiceAccount{
		ProjectID:   "test-project",
		ClientEmail: "svc@test-project.iam.gserviceaccount.com",
		PrivateKey:  testPrivateKeyPEM(t),
		TokenURI:    server.URL,
	}, server.Client())

	// Act
	first, err := source.Token(context.Background())
	require.NoError(t, err)
	second, err := source.Token(context.Background())
	require.NoError(t, err)

	// Assert
	assert.Equal(t, "at-1", first)
	assert.Equal(t, "at-1", second)
	assert.Equal(t, int32(1), calls.Load(), "second call must hit the cache")
}

func TestServiceAccountTokenSource_EndpointError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer server.Close()

	source := NewServiceAccountTokenSource(ServiceAccount{
		ClientEmail: "svc@test-project.iam.gserviceaccount.com",
		PrivateKey:  testPrivateKeyPEM(t),
		TokenURI:    server.URL,
	}, server.Client())

	_, err := source.Token(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestServiceAccountTokenSource_BadPrivateKey(t *testing.T) {
	source := NewServiceAccountTokenSource(ServiceAccount{
		ClientEmail: "svc@test-project.iam.gserviceaccount.com",
		PrivateKey:  "not a pem block",
	}, nil)

	_, err := source.Token(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse private key")
}
