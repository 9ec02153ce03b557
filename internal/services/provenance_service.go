// internal/services/provenance_service.go
package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sensorgrid/ipflow-backend/internal/apperrors"
	"github.com/sensorgrid/ipflow-backend/internal/ledger"
	"github.com/sensorgrid/ipflow-backend/internal/pinning"
	"github.com/sensorgrid/ipflow-backend/internal/utils"
)

// ProvenanceService reads registration records back from the ledger and
// resolves the metadata documents they point at. The core read is
// authoritative; document resolution is best effort.
type ProvenanceService struct {
	ledger     ledger.Client
	gatewayURL string
	httpClient *http.Client
}

func NewProvenanceService(ledgerClient ledger.Client, gatewayURL string) *ProvenanceService {
	return &ProvenanceService{
		ledger:     ledgerClient,
		gatewayURL: gatewayURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// EnrichedMetadata is a core registration record plus whatever documents and
// attribute bags could be resolved from its URIs. Absent parts are nil, never
// an error: partial enrichment is a valid outcome.
type EnrichedMetadata struct {
	IPID       string                 `json:"ip_id"`
	Core       *ledger.CoreMetadata   `json:"core"`
	Document   map[string]interface{} `json:"document,omitempty"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
	TokenDoc   map[string]interface{} `json:"token_document,omitempty"`

	// HashVerified reports whether the fetched document bytes match the
	// on-chain metadata hash. Nil when the document was not resolved.
	HashVerified *bool `json:"hash_verified,omitempty"`
}

type CoreReadResult struct {
	IPID string               `json:"ip_id"`
	Core *ledger.CoreMetadata `json:"core,omitempty"`
	Err  error                `json:"-"`
}

type EnrichedReadResult struct {
	IPID     string            `json:"ip_id"`
	Enriched *EnrichedMetadata `json:"enriched,omitempty"`
	Err      error             `json:"-"`
}

// ReadCore fetches the on-chain registration record of one asset.
func (s *ProvenanceService) ReadCore(ctx context.Context, ipID string) (*ledger.CoreMetadata, error) {
	if ipID == "" {
		return nil, apperrors.NewValidationError("ip_id", "IP asset id is required")
	}
	return s.ledger.CoreMetadata(ctx, ipID)
}

// ReadEnriched fetches the core record and then resolves its metadata URI and
// nested token URI. The core read must succeed; every enrichment step that
// fails is logged and skipped so one unreachable document never hides the
// on-chain facts.
func (s *ProvenanceService) ReadEnriched(ctx context.Context, ipID string) (*EnrichedMetadata, error) {
	core, err := s.ReadCore(ctx, ipID)
	if err != nil {
		return nil, err
	}

	enriched := &EnrichedMetadata{IPID: ipID, Core: core}

	if core.MetadataURI != "" {
		doc, body, err := s.resolveDocument(ctx, core.MetadataURI)
		if err != nil {
			logrus.WithFields(logrus.Fields{"ip_id": ipID, "uri": core.MetadataURI}).
				WithError(err).Debug("Could not resolve asset metadata document")
		} else {
			enriched.Document = doc
			enriched.Attributes = decodeAttributeBag(doc)
			if core.MetadataHash != "" && body != nil {
				verified := utils.ValidateFileHash(body, core.MetadataHash)
				enriched.HashVerified = &verified
			}
		}
	}

	if core.NFTTokenURI != "" {
		doc, _, err := s.resolveDocument(ctx, core.NFTTokenURI)
		if err != nil {
			logrus.WithFields(logrus.Fields{"ip_id": ipID, "uri": core.NFTTokenURI}).
				WithError(err).Debug("Could not resolve token metadata document")
		} else {
			enriched.TokenDoc = doc
		}
	}

	return enriched, nil
}

// BatchReadCore reads core records for several assets concurrently. Results
// come back in input order, each carrying its own error.
func (s *ProvenanceService) BatchReadCore(ctx context.Context, ipIDs []string) []CoreReadResult {
	results := make([]CoreReadResult, len(ipIDs))

	var wg sync.WaitGroup
	for i, id := range ipIDs {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			core, err := s.ReadCore(ctx, id)
			results[i] = CoreReadResult{IPID: id, Core: core, Err: err}
		}(i, id)
	}
	wg.Wait()

	return results
}

// BatchReadEnriched is BatchReadCore with full enrichment per asset.
func (s *ProvenanceService) BatchReadEnriched(ctx context.Context, ipIDs []string) []EnrichedReadResult {
	results := make([]EnrichedReadResult, len(ipIDs))

	var wg sync.WaitGroup
	for i, id := range ipIDs {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			enriched, err := s.ReadEnriched(ctx, id)
			results[i] = EnrichedReadResult{IPID: id, Enriched: enriched, Err: err}
		}(i, id)
	}
	wg.Wait()

	return results
}

// resolveDocument fetches a metadata URI and decodes it as a JSON object,
// returning the raw fetched bytes alongside. ipfs:// locators are rewritten to
// the configured gateway; data: URIs with a base64 JSON payload are decoded
// inline without a network round trip.
func (s *ProvenanceService) resolveDocument(ctx context.Context, uri string) (map[string]interface{}, []byte, error) {
	if doc, ok := decodeDataURI(uri); ok {
		return doc, nil, nil
	}

	target := pinning.ResolveLocator(s.gatewayURL, pinning.Locator(uri))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, nil, &apperrors.FetchError{URL: target, Err: err}
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, nil, &apperrors.FetchError{URL: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, &apperrors.FetchError{URL: target, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &apperrors.FetchError{URL: target, Err: err}
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, nil, fmt.Errorf("metadata document at %s is not a JSON object: %w", target, err)
	}
	return doc, body, nil
}

// decodeDataURI handles data:application/json;base64,<payload> token URIs,
// which some collections embed instead of hosting a document.
func decodeDataURI(uri string) (map[string]interface{}, bool) {
	const prefix = "data:application/json;base64,"
	if !strings.HasPrefix(uri, prefix) {
		return nil, false
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, prefix))
	if err != nil {
		return nil, false
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, false
	}
	return doc, true
}

// decodeAttributeBag extracts the attribute map from a resolved document. Two
// shapes are accepted: a plain "attributes" object, or a base64-encoded JSON
// string under "attributes" or "encoded_attributes". Anything else yields nil.
func decodeAttributeBag(doc map[string]interface{}) map[string]interface{} {
	for _, key := range []string{"attributes", "encoded_attributes"} {
		value, ok := doc[key]
		if !ok {
			continue
		}
		switch v := value.(type) {
		case map[string]interface{}:
			return v
		case string:
			raw, err := base64.StdEncoding.DecodeString(v)
			if err != nil {
				continue
			}
			var bag map[string]interface{}
			if err := json.Unmarshal(raw, &bag); err != nil {
				continue
			}
			return bag
		}
	}
	return nil
}
