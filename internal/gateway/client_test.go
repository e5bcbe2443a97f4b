package gateway_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"malonda/internal/gateway"
)

type staticTokens string

func (t staticTokens) AccessToken() string { return string(t) }

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := gateway.NewClient(server.URL, staticTokens("tok1"), 5*time.Second)
	var out map[string]bool
	err := client.Get(context.Background(), "/cart/", &out)
	assert.NoError(t, err)
	assert.Equal(t, "Bearer tok1", gotAuth)
	assert.True(t, out["ok"])
}

func TestClient_NoTokenMeansUnauthenticatedRequest(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := gateway.NewClient(server.URL, staticTokens(""), 5*time.Second)
	var out []struct{}
	err := client.Get(context.Background(), "/products/", &out)
	assert.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClient_ServerMessageSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Invalid discount code"}`))
	}))
	defer server.Close()

	client := gateway.NewClient(server.URL, nil, 5*time.Second)
	err := client.Post(context.Background(), "/apply-discount/", map[string]string{"code": "NOPE"}, nil)
	assert.Error(t, err)

	apiErr, ok := gateway.AsAPIError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Invalid discount code", apiErr.Message)
	assert.Equal(t, "Invalid discount code", gateway.ServerMessage(err, "fallback"))
}

func TestClient_DetailBodyAndFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"detail":"Unauthorized"}`))
	}))
	defer server.Close()

	client := gateway.NewClient(server.URL, nil, 5*time.Second)
	err := client.Get(context.Background(), "/manager-dashboard/", nil)
	assert.Error(t, err)
	assert.Equal(t, "Unauthorized", gateway.ServerMessage(err, "fallback"))

	// A bodyless failure falls back to the generic message
	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer empty.Close()

	client = gateway.NewClient(empty.URL, nil, 5*time.Second)
	err = client.Get(context.Background(), "/orders/", nil)
	assert.Error(t, err)
	assert.Equal(t, "fallback", gateway.ServerMessage(err, "fallback"))
}

func TestClient_FieldErrorsFromRegistration(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"email":["user with this email already exists."],"password":["too short"]}`))
	}))
	defer server.Close()

	client := gateway.NewClient(server.URL, nil, 5*time.Second)
	err := client.Post(context.Background(), "/register/", map[string]string{}, nil)
	assert.Error(t, err)

	apiErr, ok := gateway.AsAPIError(err)
	assert.True(t, ok)
	assert.Equal(t, "user with this email already exists.", apiErr.Fields["email"])
	assert.Equal(t, "too short", apiErr.Fields["password"])
	assert.Contains(t, apiErr.Error(), "email: user with this email already exists.")
}

func TestClient_UnauthorizedSignalsObserversOnce(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Token expired"}`))
	}))
	defer server.Close()

	client := gateway.NewClient(server.URL, staticTokens("stale"), 5*time.Second)
	signals := 0
	client.OnUnauthorized(func() { signals++ })

	// Two consecutive 401s produce one signal
	_ = client.Get(context.Background(), "/cart/", nil)
	_ = client.Get(context.Background(), "/orders/", nil)
	assert.Equal(t, 1, signals)

	// A fresh authentication re-arms the signal
	client.ResetUnauthorized()
	_ = client.Get(context.Background(), "/cart/", nil)
	assert.Equal(t, 2, signals)
}

func TestClient_PostMultipartCarriesFieldsAndFile(t *testing.T) {
	var gotName, gotFile string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		gotName = r.FormValue("name")
		if file, header, err := r.FormFile("image"); err == nil {
			gotFile = header.Filename
			file.Close()
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 3})
	}))
	defer server.Close()

	imgPath := filepath.Join(t.TempDir(), "product.png")
	assert.NoError(t, os.WriteFile(imgPath, []byte("png-bytes"), 0o644))

	client := gateway.NewClient(server.URL, staticTokens("tok1"), 5*time.Second)
	var out map[string]int
	err := client.PostMultipart(context.Background(), "/products/",
		map[string]string{"name": "Laptop"}, "image", imgPath, &out)
	assert.NoError(t, err)
	assert.Equal(t, "Laptop", gotName)
	assert.Equal(t, "product.png", gotFile)
	assert.Equal(t, 3, out["id"])
}
