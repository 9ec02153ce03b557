// internal/ledger/gateway.go
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sensorgrid/ipflow-backend/internal/apperrors"
)

// GatewayClient talks JSON to the ledger gateway, which signs and submits the
// underlying contract transactions. Decoding is schema-checked and fails
// closed: a response missing a required field is a LedgerError, never a
// silently misassigned result.
type GatewayClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewGatewayClient(baseURL string) *GatewayClient {
	return &GatewayClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}
}

type gatewayEnvelope struct {
	Error string          `json:"error"`
	Data  json.RawMessage `json:"data"`
}

func (c *GatewayClient) post(ctx context.Context, operation, path, sender string, payload interface{}, out interface{}) error {
	body := map[string]interface{}{
		"sender":  sender,
		"request": payload,
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return apperrors.NewLedgerError(operation, err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return apperrors.NewLedgerError(operation, err.Error())
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, operation, out)
}

func (c *GatewayClient) get(ctx context.Context, operation, path string, query url.Values, out interface{}) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return apperrors.NewLedgerError(operation, err.Error())
	}

	return c.do(req, operation, out)
}

func (c *GatewayClient) do(req *http.Request, operation string, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewLedgerError(operation, err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.NewLedgerError(operation, err.Error())
	}

	var envelope gatewayEnvelope
	decodable := json.Unmarshal(raw, &envelope) == nil

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Surface the gateway's own message verbatim when it sent one.
		if decodable && envelope.Error != "" {
			return apperrors.NewLedgerError(operation, envelope.Error)
		}
		return apperrors.NewLedgerError(operation,
			fmt.Sprintf("gateway returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))))
	}

	if !decodable || envelope.Data == nil {
		return apperrors.NewLedgerError(operation, "malformed gateway response")
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return apperrors.NewLedgerError(operation, fmt.Sprintf("malformed gateway response: %v", err))
	}

	return nil
}

func requireFields(operation string, fields map[string]string) error {
	for name, value := range fields {
		if value == "" {
			return apperrors.NewLedgerError(operation, fmt.Sprintf("gateway response missing %s", name))
		}
	}
	return nil
}

func (c *GatewayClient) RegisterOriginal(ctx context.Context, signer SigningContext, req RegisterOriginalRequest) (*RegisterOriginalResult, error) {
	const op = "register-original"

	var decoded struct {
		AssetID         string   `json:"asset_id"`
		TxHash          string   `json:"tx_hash"`
		LicenseTermsIDs []string `json:"license_terms_ids"`
	}
	if err := c.post(ctx, op, "/v1/ip/register", signer.WalletAddress, req, &decoded); err != nil {
		return nil, err
	}

	if err := requireFields(op, map[string]string{
		"asset_id": decoded.AssetID,
		"tx_hash":  decoded.TxHash,
	}); err != nil {
		return nil, err
	}
	if len(decoded.LicenseTermsIDs) != len(req.Terms) {
		return nil, apperrors.NewLedgerError(op,
			fmt.Sprintf("gateway returned %d license terms ids for %d terms", len(decoded.LicenseTermsIDs), len(req.Terms)))
	}

	return &RegisterOriginalResult{
		AssetID:         decoded.AssetID,
		TxHash:          decoded.TxHash,
		LicenseTermsIDs: decoded.LicenseTermsIDs,
	}, nil
}

func (c *GatewayClient) RegisterDerivative(ctx context.Context, signer SigningContext, req RegisterDerivativeRequest) (*RegisterDerivativeResult, error) {
	const op = "register-derivative"

	var decoded struct {
		AssetID string `json:"asset_id"`
		TxHash  string `json:"tx_hash"`
	}
	if err := c.post(ctx, op, "/v1/ip/register-derivative", signer.WalletAddress, req, &decoded); err != nil {
		return nil, err
	}

	if err := requireFields(op, map[string]string{
		"asset_id": decoded.AssetID,
		"tx_hash":  decoded.TxHash,
	}); err != nil {
		return nil, err
	}

	return &RegisterDerivativeResult{AssetID: decoded.AssetID, TxHash: decoded.TxHash}, nil
}

func (c *GatewayClient) MintLicense(ctx context.Context, signer SigningContext, req MintLicenseRequest) (*MintLicenseResult, error) {
	const op = "mint-license"

	var decoded struct {
		TxHash   string   `json:"tx_hash"`
		TokenIDs []string `json:"token_ids"`
		FeePaid  string   `json:"fee_paid"`
	}
	if err := c.post(ctx, op, "/v1/license/mint", signer.WalletAddress, req, &decoded); err != nil {
		return nil, err
	}

	if err := requireFields(op, map[string]string{"tx_hash": decoded.TxHash}); err != nil {
		return nil, err
	}
	if len(decoded.TokenIDs) == 0 {
		return nil, apperrors.NewLedgerError(op, "gateway response missing token_ids")
	}

	return &MintLicenseResult{TxHash: decoded.TxHash, TokenIDs: decoded.TokenIDs, FeePaid: decoded.FeePaid}, nil
}

func (c *GatewayClient) PayRoyalty(ctx context.Context, signer SigningContext, req PayRoyaltyRequest) (*PayRoyaltyResult, error) {
	const op = "pay-royalty"

	var decoded struct {
		TxHash string `json:"tx_hash"`
	}
	if err := c.post(ctx, op, "/v1/royalty/pay", signer.WalletAddress, req, &decoded); err != nil {
		return nil, err
	}

	if err := requireFields(op, map[string]string{"tx_hash": decoded.TxHash}); err != nil {
		return nil, err
	}

	return &PayRoyaltyResult{TxHash: decoded.TxHash}, nil
}

func (c *GatewayClient) ClaimableRevenue(ctx context.Context, req ClaimableRequest) (string, error) {
	const op = "claimable-revenue"

	query := url.Values{}
	query.Set("ancestor_asset_id", req.AncestorAssetID)
	query.Set("claimer", req.Claimer)
	query.Set("token", req.Token)

	var decoded struct {
		Amount string `json:"amount"`
	}
	if err := c.get(ctx, op, "/v1/royalty/claimable", query, &decoded); err != nil {
		return "", err
	}

	if err := requireFields(op, map[string]string{"amount": decoded.Amount}); err != nil {
		return "", err
	}

	return decoded.Amount, nil
}

func (c *GatewayClient) ClaimAllRevenue(ctx context.Context, signer SigningContext, req ClaimRevenueRequest) (*ClaimRevenueResult, error) {
	const op = "claim-all-revenue"

	var decoded struct {
		TxHashes      []string       `json:"tx_hashes"`
		ClaimedTokens []ClaimedToken `json:"claimed_tokens"`
	}
	if err := c.post(ctx, op, "/v1/royalty/claim-all", signer.WalletAddress, req, &decoded); err != nil {
		return nil, err
	}

	return &ClaimRevenueResult{TxHashes: decoded.TxHashes, ClaimedTokens: decoded.ClaimedTokens}, nil
}

func (c *GatewayClient) CoreMetadata(ctx context.Context, assetID string) (*CoreMetadata, error) {
	const op = "read-core-metadata"

	var decoded struct {
		Owner            string `json:"owner"`
		RegistrationDate int64  `json:"registration_date"`
		MetadataURI      string `json:"metadata_uri"`
		MetadataHash     string `json:"metadata_hash"`
		NFTTokenURI      string `json:"nft_token_uri"`
		NFTMetadataHash  string `json:"nft_metadata_hash"`
	}
	if err := c.get(ctx, op, "/v1/ip/"+url.PathEscape(assetID)+"/metadata", nil, &decoded); err != nil {
		return nil, err
	}

	if err := requireFields(op, map[string]string{
		"owner":        decoded.Owner,
		"metadata_uri": decoded.MetadataURI,
	}); err != nil {
		return nil, err
	}

	return &CoreMetadata{
		Owner:            decoded.Owner,
		RegistrationDate: time.Unix(decoded.RegistrationDate, 0).UTC(),
		MetadataURI:      decoded.MetadataURI,
		MetadataHash:     decoded.MetadataHash,
		NFTTokenURI:      decoded.NFTTokenURI,
		NFTMetadataHash:  decoded.NFTMetadataHash,
	}, nil
}
