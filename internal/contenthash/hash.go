// internal/contenthash/hash.go
package contenthash

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sensorgrid/ipflow-backend/internal/apperrors"
)

// Digest is a 32-byte content digest in the bytes32 layout the ledger
// contracts store on-chain.
type Digest [32]byte

func (d Digest) Hex() string {
	return "0x" + hex.EncodeToString(d[:])
}

func (d Digest) String() string { return d.Hex() }

// ParseDigest decodes a 0x-prefixed 64-char hex string. Any other size is a
// programming error on the caller's side, reported as a plain error.
func ParseDigest(s string) (Digest, error) {
	var d Digest
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return d, fmt.Errorf("invalid digest encoding: %w", err)
	}
	if len(raw) != len(d) {
		return d, fmt.Errorf("invalid digest length: got %d bytes, want %d", len(raw), len(d))
	}
	copy(d[:], raw)
	return d, nil
}

func HashBytes(content []byte) Digest {
	return Digest(sha256.Sum256(content))
}

func HashString(content string) Digest {
	return HashBytes([]byte(content))
}

// HashJSON hashes the canonical serialization of v. The value is re-marshaled
// through an untyped tree so that map key order never influences the digest:
// two documents with identical field values hash identically regardless of
// insertion order.
func HashJSON(v interface{}) (Digest, error) {
	canonical, err := CanonicalJSON(v)
	if err != nil {
		return Digest{}, err
	}
	return HashBytes(canonical), nil
}

// CanonicalJSON serializes v with deterministic key ordering.
func CanonicalJSON(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize content: %w", err)
	}
	var tree interface{}
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("failed to canonicalize content: %w", err)
	}
	canonical, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize content: %w", err)
	}
	return canonical, nil
}

// HashRemote fetches url fully into memory and hashes the raw bytes. It does
// not retry; a transport failure or non-2xx status yields a FetchError.
func HashRemote(ctx context.Context, client *http.Client, url string) (Digest, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Digest{}, &apperrors.FetchError{URL: url, Err: err}
	}

	resp, err := client.Do(req)
	if err != nil {
		return Digest{}, &apperrors.FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Digest{}, &apperrors.FetchError{URL: url, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Digest{}, &apperrors.FetchError{URL: url, Err: err}
	}

	return HashBytes(body), nil
}
