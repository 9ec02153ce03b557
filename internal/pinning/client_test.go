// internal/pinning/client_test.go
package pinning

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sensorgrid/ipflow-backend/internal/apperrors"
)

func TestPinJSONEmbedsRawBytes(t *testing.T) {
	raw := json.RawMessage(`{"title":"Soil Moisture Levels","health":"96%"}`)

	var received map[string]json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pinning/pinJSONToIPFS", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &received))

		json.NewEncoder(w).Encode(map[string]interface{}{"IpfsHash": "QmTestCID"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "https://gateway.example.com", "test-token")
	locator, err := client.PinJSON(context.Background(), raw, "asset-metadata.json")
	require.NoError(t, err)

	assert.Equal(t, Locator("ipfs://QmTestCID"), locator)
	assert.Equal(t, "QmTestCID", locator.CID())
	// The pinned content must be byte-identical to what the caller serialized.
	assert.JSONEq(t, string(raw), string(received["pinataContent"]))
}

func TestPinFileMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pinning/pinFileToIPFS", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		content, _ := io.ReadAll(file)
		assert.Equal(t, "export.csv", header.Filename)
		assert.Equal(t, []byte("ts,value\n1,0.42\n"), content)

		json.NewEncoder(w).Encode(map[string]interface{}{"IpfsHash": "QmFileCID"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "https://gateway.example.com", "test-token")
	locator, err := client.PinFile(context.Background(), []byte("ts,value\n1,0.42\n"), "export.csv")
	require.NoError(t, err)
	assert.Equal(t, Locator("ipfs://QmFileCID"), locator)
}

func TestPinJSONUpstreamRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte("quota exceeded"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "https://gateway.example.com", "test-token")
	_, err := client.PinJSON(context.Background(), json.RawMessage(`{}`), "doc")
	require.Error(t, err)

	var ue *apperrors.StorageUploadError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusPaymentRequired, ue.Status)
	assert.Equal(t, "quota exceeded", ue.Body)
}

func TestResolveLocator(t *testing.T) {
	assert.Equal(t,
		"https://gateway.example.com/ipfs/QmTestCID",
		ResolveLocator("https://gateway.example.com/", Locator("ipfs://QmTestCID")))

	// Non-ipfs locators pass through unchanged.
	assert.Equal(t,
		"https://elsewhere.example.com/doc.json",
		ResolveLocator("https://gateway.example.com", Locator("https://elsewhere.example.com/doc.json")))
}
