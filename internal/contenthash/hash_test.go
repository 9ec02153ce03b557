// internal/contenthash/hash_test.go
package contenthash

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sensorgrid/ipflow-backend/internal/apperrors"
)

func TestHashStringDeterministic(t *testing.T) {
	d1 := HashString("soil moisture reading")
	d2 := HashString("soil moisture reading")
	d3 := HashString("soil moisture reading ")

	assert.Equal(t, d1, d2)
	assert.NotEqual(t, d1, d3)
	assert.Len(t, d1.Hex(), 66)
	assert.Equal(t, "0x", d1.Hex()[:2])
}

func TestHashJSONKeyOrderIndependent(t *testing.T) {
	// Same field values, different insertion order.
	d1, err := HashJSON(json.RawMessage(`{"title":"Soil Moisture","health":"96%","nested":{"a":1,"b":2}}`))
	require.NoError(t, err)

	d2, err := HashJSON(json.RawMessage(`{"nested":{"b":2,"a":1},"health":"96%","title":"Soil Moisture"}`))
	require.NoError(t, err)

	assert.Equal(t, d1, d2)
}

func TestHashJSONStructAndMapAgree(t *testing.T) {
	type doc struct {
		Title  string `json:"title"`
		Health string `json:"health"`
	}

	d1, err := HashJSON(doc{Title: "Soil Moisture", Health: "96%"})
	require.NoError(t, err)

	d2, err := HashJSON(map[string]interface{}{
		"health": "96%",
		"title":  "Soil Moisture",
	})
	require.NoError(t, err)

	assert.Equal(t, d1, d2)
}

func TestParseDigestRoundTrip(t *testing.T) {
	d := HashString("payload")
	parsed, err := ParseDigest(d.Hex())
	require.NoError(t, err)
	assert.Equal(t, d, parsed)

	_, err = ParseDigest("0xdeadbeef")
	assert.Error(t, err)
}

func TestHashRemote(t *testing.T) {
	content := []byte(`{"type":"moisture"}`)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(content)
	}))
	defer srv.Close()

	d, err := HashRemote(context.Background(), srv.Client(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, HashBytes(content), d)
}

func TestHashRemoteNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := HashRemote(context.Background(), srv.Client(), srv.URL)
	require.Error(t, err)

	var fe *apperrors.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, http.StatusBadGateway, fe.Status)
}

func TestHashRemoteUnreachable(t *testing.T) {
	_, err := HashRemote(context.Background(), nil, "http://127.0.0.1:1/unreachable")
	var fe *apperrors.FetchError
	assert.ErrorAs(t, err, &fe)
}
