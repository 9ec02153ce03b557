// internal/ledger/gateway_test.go
package ledger

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

func gatewayStub(t *testing.T, handler http.HandlerFunc) (*GatewayClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGatewayClient(srv.URL), srv
}

func respond(w http.ResponseWriter, data interface{}) {
	json.NewEncoder(w).Encode(map[string]interface{}{"data": data})
}

func TestRegisterOriginal(t *testing.T) {
	client, _ := gatewayStub(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/ip/register", r.URL.Path)

		var body struct {
			Sender  string                  `json:"sender"`
			Request RegisterOriginalRequest `json:"request"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "0xWallet", body.Sender)
		assert.Equal(t, uint32(10), body.Request.Terms[0].RevenueSharePercent)

		respond(w, map[string]interface{}{
			"asset_id":          "0xAsset",
			"tx_hash":           "0xTx",
			"license_terms_ids": []string{"7"},
		})
	})

	result, err := client.RegisterOriginal(context.Background(), SigningContext{WalletAddress: "0xWallet"}, RegisterOriginalRequest{
		Spec:  MintSpec{Recipient: "0xWallet"},
		Terms: []LicenseTermsSpec{{RevenueSharePercent: 10, MintingFee: "10000000000000000", Currency: "0xWIP"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "0xAsset", result.AssetID)
	assert.Equal(t, []string{"7"}, result.LicenseTermsIDs)
}

func TestDecodeFailsClosedOnMissingFields(t *testing.T) {
	client, _ := gatewayStub(t, func(w http.ResponseWriter, r *http.Request) {
		// tx_hash present, asset_id missing: must not be misassigned.
		respond(w, map[string]interface{}{"tx_hash": "0xTx"})
	})

	_, err := client.RegisterDerivative(context.Background(), SigningContext{WalletAddress: "0xWallet"}, RegisterDerivativeRequest{})
	require.Error(t, err)

	var le *apperrors.LedgerError
	require.ErrorAs(t, err, &le)
	assert.Contains(t, le.Message, "asset_id")
}

func TestDecodeFailsClosedOnArityMismatch(t *testing.T) {
	client, _ := gatewayStub(t, func(w http.ResponseWriter, r *http.Request) {
		respond(w, map[string]interface{}{
			"asset_id":          "0xAsset",
			"tx_hash":           "0xTx",
			"license_terms_ids": []string{"7", "8"},
		})
	})

	_, err := client.RegisterOriginal(context.Background(), SigningContext{WalletAddress: "0xWallet"}, RegisterOriginalRequest{
		Terms: []LicenseTermsSpec{{RevenueSharePercent: 10}},
	})

	var le *apperrors.LedgerError
	require.ErrorAs(t, err, &le)
	assert.Contains(t, le.Message, "license terms ids")
}

func TestMintLicenseCarriesFeePaid(t *testing.T) {
	client, _ := gatewayStub(t, func(w http.ResponseWriter, r *http.Request) {
		respond(w, map[string]interface{}{
			"tx_hash":   "0xTx",
			"token_ids": []string{"1001"},
			"fee_paid":  "10000000000000000",
		})
	})

	result, err := client.MintLicense(context.Background(), SigningContext{WalletAddress: "0xWallet"}, MintLicenseRequest{
		AssetID: "0xAsset", TermsID: "7", Amount: 1, Receiver: "0xWallet",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"1001"}, result.TokenIDs)
	assert.Equal(t, "10000000000000000", result.FeePaid)
}

func TestGatewayErrorPassedThroughVerbatim(t *testing.T) {
	client, _ := gatewayStub(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "execution reverted: PIL: minting fee exceeds max",
		})
	})

	_, err := client.MintLicense(context.Background(), SigningContext{WalletAddress: "0xWallet"}, MintLicenseRequest{
		AssetID: "0xAsset", TermsID: "7", Amount: 3, Receiver: "0xWallet",
	})

	var le *apperrors.LedgerError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "execution reverted: PIL: minting fee exceeds max", le.Message)
}

func TestClaimableRevenueQuery(t *testing.T) {
	client, _ := gatewayStub(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/royalty/claimable", r.URL.Path)
		assert.Equal(t, "0xAsset", r.URL.Query().Get("ancestor_asset_id"))
		assert.Equal(t, "0xAsset", r.URL.Query().Get("claimer"))
		respond(w, map[string]string{"amount": "2500000000000000000"})
	})

	amount, err := client.ClaimableRevenue(context.Background(), ClaimableRequest{
		AncestorAssetID: "0xAsset",
		Claimer:         "0xAsset",
		Token:           "0xWIP",
	})
	require.NoError(t, err)
	assert.Equal(t, "2500000000000000000", amount)
}

func TestCoreMetadata(t *testing.T) {
	client, _ := gatewayStub(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/ip/0xAsset/metadata", r.URL.Path)
		respond(w, map[string]interface{}{
			"owner":             "0xOwner",
			"registration_date": 1705341600,
			"metadata_uri":      "ipfs://QmMeta",
			"metadata_hash":     "0xabc",
			"nft_token_uri":     "ipfs://QmToken",
			"nft_metadata_hash": "0xdef",
		})
	})

	core, err := client.CoreMetadata(context.Background(), "0xAsset")
	require.NoError(t, err)
	assert.Equal(t, "0xOwner", core.Owner)
	assert.Equal(t, int64(1705341600), core.RegistrationDate.Unix())
	assert.Equal(t, "ipfs://QmMeta", core.MetadataURI)
}

func TestExplorerURLs(t *testing.T) {
	assert.Equal(t, "https://explorer.example.com/ipa/0xAsset",
		ExplorerAssetURL("https://explorer.example.com/", "0xAsset"))
	assert.Equal(t, "https://explorer.example.com/tx/0xTx",
		ExplorerTxURL("https://explorer.example.com", "0xTx"))
}
