// internal/services/helpers_test.go
package services

import (
	"context"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sensorgrid/ipflow-backend/internal/config"
	"github.com/sensorgrid/ipflow-backend/internal/contenthash"
	"github.com/sensorgrid/ipflow-backend/internal/ledger"
	"github.com/sensorgrid/ipflow-backend/internal/models"
	"github.com/sensorgrid/ipflow-backend/internal/utils"
)

// hashHex is the digest of raw bytes in on-chain hex form.
func hashHex(content []byte) string {
	return contenthash.HashBytes(content).Hex()
}

func testPagination() utils.PaginationParams {
	return utils.PaginationParams{Page: 1, Limit: 20, Sort: "created_at", Order: "desc"}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.SensorRecord{},
		&models.Registration{},
		&models.LicenseMint{},
		&models.RoyaltyFlow{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		JWT: config.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenTTL:  24,
			RefreshTokenTTL: 168,
		},
		Ledger: config.LedgerConfig{
			GatewayURL:          "http://ledger.test",
			Collection:          "0xc0ffee0000000000000000000000000000000001",
			RoyaltyCurrency:     "0x1514000000000000000000000000000000000000",
			DefaultRevenueShare: 5,
			DefaultMintingFee:   "10000000000000000",
		},
		Explorer: config.ExplorerConfig{
			BaseURL: "https://explorer.test",
		},
	}
}

// mockLedger is a programmable ledger.Client that records every call.
type mockLedger struct {
	mu sync.Mutex

	calls        map[string]int
	lastSigner   ledger.SigningContext
	lastOriginal ledger.RegisterOriginalRequest
	lastDeriv    ledger.RegisterDerivativeRequest
	lastMint     ledger.MintLicenseRequest
	lastPay      ledger.PayRoyaltyRequest
	lastClaim    ledger.ClaimRevenueRequest
	lastClaimQ   ledger.ClaimableRequest

	failWith error

	originalResult *ledger.RegisterOriginalResult
	derivResult    *ledger.RegisterDerivativeResult
	mintResult     *ledger.MintLicenseResult
	payResult      *ledger.PayRoyaltyResult
	claimResult    *ledger.ClaimRevenueResult
	claimable      string
	coreResult     *ledger.CoreMetadata
}

func newMockLedger() *mockLedger {
	return &mockLedger{
		calls: make(map[string]int),
		originalResult: &ledger.RegisterOriginalResult{
			AssetID:         "0x1234567890abcdef1234567890abcdef12345678",
			TxHash:          "0xaaaa000000000000000000000000000000000000000000000000000000000001",
			LicenseTermsIDs: []string{"42"},
		},
		derivResult: &ledger.RegisterDerivativeResult{
			AssetID: "0xdddd567890abcdef1234567890abcdef1234dddd",
			TxHash:  "0xaaaa000000000000000000000000000000000000000000000000000000000002",
		},
		mintResult: &ledger.MintLicenseResult{
			TxHash:   "0xaaaa000000000000000000000000000000000000000000000000000000000003",
			TokenIDs: []string{"1001", "1002", "1003"},
			FeePaid:  "30000000000000000",
		},
		payResult: &ledger.PayRoyaltyResult{
			TxHash: "0xaaaa000000000000000000000000000000000000000000000000000000000004",
		},
		claimResult: &ledger.ClaimRevenueResult{
			TxHashes:      []string{"0xaaaa000000000000000000000000000000000000000000000000000000000005"},
			ClaimedTokens: []ledger.ClaimedToken{{Token: "0x1514000000000000000000000000000000000000", Amount: "2500000000000000000"}},
		},
		claimable: "2500000000000000000",
	}
}

func (m *mockLedger) record(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[method]++
}

func (m *mockLedger) totalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

func (m *mockLedger) RegisterOriginal(ctx context.Context, signer ledger.SigningContext, req ledger.RegisterOriginalRequest) (*ledger.RegisterOriginalResult, error) {
	m.record("RegisterOriginal")
	m.lastSigner, m.lastOriginal = signer, req
	if m.failWith != nil {
		return nil, m.failWith
	}
	return m.originalResult, nil
}

func (m *mockLedger) RegisterDerivative(ctx context.Context, signer ledger.SigningContext, req ledger.RegisterDerivativeRequest) (*ledger.RegisterDerivativeResult, error) {
	m.record("RegisterDerivative")
	m.lastSigner, m.lastDeriv = signer, req
	if m.failWith != nil {
		return nil, m.failWith
	}
	return m.derivResult, nil
}

func (m *mockLedger) MintLicense(ctx context.Context, signer ledger.SigningContext, req ledger.MintLicenseRequest) (*ledger.MintLicenseResult, error) {
	m.record("MintLicense")
	m.lastSigner, m.lastMint = signer, req
	if m.failWith != nil {
		return nil, m.failWith
	}
	return m.mintResult, nil
}

func (m *mockLedger) PayRoyalty(ctx context.Context, signer ledger.SigningContext, req ledger.PayRoyaltyRequest) (*ledger.PayRoyaltyResult, error) {
	m.record("PayRoyalty")
	m.lastSigner, m.lastPay = signer, req
	if m.failWith != nil {
		return nil, m.failWith
	}
	return m.payResult, nil
}

func (m *mockLedger) ClaimableRevenue(ctx context.Context, req ledger.ClaimableRequest) (string, error) {
	m.record("ClaimableRevenue")
	m.lastClaimQ = req
	if m.failWith != nil {
		return "", m.failWith
	}
	return m.claimable, nil
}

func (m *mockLedger) ClaimAllRevenue(ctx context.Context, signer ledger.SigningContext, req ledger.ClaimRevenueRequest) (*ledger.ClaimRevenueResult, error) {
	m.record("ClaimAllRevenue")
	m.lastSigner, m.lastClaim = signer, req
	if m.failWith != nil {
		return nil, m.failWith
	}
	return m.claimResult, nil
}

func (m *mockLedger) CoreMetadata(ctx context.Context, assetID string) (*ledger.CoreMetadata, error) {
	m.record("CoreMetadata")
	if m.failWith != nil {
		return nil, m.failWith
	}
	return m.coreResult, nil
}
