// internal/pinning/client.go
package pinning

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/sensorgrid/ipflow-backend/internal/apperrors"
)

const locatorScheme = "ipfs://"

// Locator is an opaque content identifier returned by the pinning network.
// It carries the ipfs:// scheme; resolution to a fetchable URL is a pure
// string transform performed by readers via GatewayURL.
type Locator string

func (l Locator) CID() string {
	return strings.TrimPrefix(string(l), locatorScheme)
}

// Client uploads JSON documents and files to a Pinata-style pinning service.
// Calls are single synchronous round trips; retry policy belongs to callers.
type Client struct {
	endpoint   string
	gatewayURL string
	authToken  string
	httpClient *http.Client
}

type pinResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

func NewClient(endpoint, gatewayURL, authToken string) *Client {
	return &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		gatewayURL: strings.TrimRight(gatewayURL, "/"),
		authToken:  authToken,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// PinJSON pins an already-serialized JSON document. The raw bytes are embedded
// untouched in the pin request so the stored content is byte-identical to what
// the caller hashed.
func (c *Client) PinJSON(ctx context.Context, raw json.RawMessage, name string) (Locator, error) {
	payload := map[string]interface{}{
		"pinataContent": raw,
		"pinataMetadata": map[string]string{
			"name": name,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", &apperrors.StorageUploadError{Operation: "pin-json", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint+"/pinning/pinJSONToIPFS", bytes.NewReader(body))
	if err != nil {
		return "", &apperrors.StorageUploadError{Operation: "pin-json", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, "pin-json")
}

// PinFile pins arbitrary bytes under the given filename.
func (c *Client) PinFile(ctx context.Context, content []byte, name string) (Locator, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return "", &apperrors.StorageUploadError{Operation: "pin-file", Err: err}
	}
	if _, err := part.Write(content); err != nil {
		return "", &apperrors.StorageUploadError{Operation: "pin-file", Err: err}
	}
	if err := writer.Close(); err != nil {
		return "", &apperrors.StorageUploadError{Operation: "pin-file", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint+"/pinning/pinFileToIPFS", &buf)
	if err != nil {
		return "", &apperrors.StorageUploadError{Operation: "pin-file", Err: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.do(req, "pin-file")
}

func (c *Client) do(req *http.Request, operation string) (Locator, error) {
	req.Header.Set("Authorization", "Bearer "+c.authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &apperrors.StorageUploadError{Operation: operation, Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &apperrors.StorageUploadError{
			Operation: operation,
			Status:    resp.StatusCode,
			Body:      strings.TrimSpace(string(body)),
		}
	}

	var pinned pinResponse
	if err := json.Unmarshal(body, &pinned); err != nil {
		return "", &apperrors.StorageUploadError{Operation: operation, Err: fmt.Errorf("malformed pin response: %w", err)}
	}
	if pinned.IpfsHash == "" {
		return "", &apperrors.StorageUploadError{Operation: operation, Err: fmt.Errorf("pin response missing content hash")}
	}

	return Locator(locatorScheme + pinned.IpfsHash), nil
}

// GatewayURL resolves a locator to a fetchable URL on the configured public
// gateway.
func (c *Client) GatewayURL(l Locator) string {
	return ResolveLocator(c.gatewayURL, l)
}

// ResolveLocator is the ipfs://CID to gateway URL transform. Non-ipfs locators
// pass through unchanged.
func ResolveLocator(gatewayURL string, l Locator) string {
	s := string(l)
	if !strings.HasPrefix(s, locatorScheme) {
		return s
	}
	return strings.TrimRight(gatewayURL, "/") + "/ipfs/" + strings.TrimPrefix(s, locatorScheme)
}
