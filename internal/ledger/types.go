// internal/ledger/types.go
package ledger

import (
	"context"
	"time"
)

// SigningContext identifies the wallet a ledger submission is signed for. It
// is threaded explicitly into every signing call; nothing in this package
// reads ambient wallet state.
type SigningContext struct {
	WalletAddress string
}

func (s SigningContext) Connected() bool {
	return s.WalletAddress != ""
}

// MintSpec describes the NFT mint backing an IP asset registration.
type MintSpec struct {
	Collection        string `json:"collection"`
	Recipient         string `json:"recipient"`
	MetadataURI       string `json:"metadata_uri"`
	MetadataHash      string `json:"metadata_hash"`
	TokenMetadataURI  string `json:"token_metadata_uri"`
	TokenMetadataHash string `json:"token_metadata_hash"`
}

// LicenseTermsSpec is the commercial-remix terms attached at registration
// time. MintingFee is a base-unit decimal string in the royalty currency.
type LicenseTermsSpec struct {
	RevenueSharePercent uint32 `json:"revenue_share_percent"`
	MintingFee          string `json:"minting_fee"`
	Currency            string `json:"currency"`
}

// DerivativeBounds are the slippage-style upper bounds a derivative
// registration accepts from the parent's published terms.
type DerivativeBounds struct {
	MaxMintingFee    string `json:"max_minting_fee"`
	MaxRevenueShare  uint32 `json:"max_revenue_share"`
	MaxRoyaltyTokens string `json:"max_royalty_tokens"`
}

type RegisterOriginalRequest struct {
	Spec  MintSpec           `json:"spec"`
	Terms []LicenseTermsSpec `json:"terms"`
}

type RegisterOriginalResult struct {
	AssetID         string
	TxHash          string
	LicenseTermsIDs []string
}

type RegisterDerivativeRequest struct {
	Spec             MintSpec         `json:"spec"`
	ParentAssetIDs   []string         `json:"parent_asset_ids"`
	LicenseTermsIDs  []string         `json:"license_terms_ids"`
	RoyaltyRecipient string           `json:"royalty_recipient,omitempty"`
	RoyaltyShares    []uint32         `json:"royalty_shares,omitempty"`
	Bounds           DerivativeBounds `json:"bounds"`
}

type RegisterDerivativeResult struct {
	AssetID string
	TxHash  string
}

type MintLicenseRequest struct {
	AssetID  string `json:"asset_id"`
	TermsID  string `json:"terms_id"`
	Amount   int64  `json:"amount"`
	Receiver string `json:"receiver"`
}

type MintLicenseResult struct {
	TxHash   string
	TokenIDs []string
	// FeePaid is the total minting fee the ledger charged, in base units.
	// Empty when the gateway omits it.
	FeePaid string
}

type PayRoyaltyRequest struct {
	PayerAssetID    string `json:"payer_asset_id"`
	ReceiverAssetID string `json:"receiver_asset_id"`
	Token           string `json:"token"`
	Amount          string `json:"amount"`
}

type PayRoyaltyResult struct {
	TxHash string
}

// ClaimRevenueRequest claims accrued revenue for an ancestor asset. Claimer
// is an IP asset id, not a wallet address: an asset claims its own royalties.
type ClaimRevenueRequest struct {
	AncestorAssetID string   `json:"ancestor_asset_id"`
	Claimer         string   `json:"claimer"`
	Tokens          []string `json:"tokens"`
}

type ClaimedToken struct {
	Token  string `json:"token"`
	Amount string `json:"amount"`
}

type ClaimRevenueResult struct {
	TxHashes      []string
	ClaimedTokens []ClaimedToken
}

type ClaimableRequest struct {
	AncestorAssetID string `json:"ancestor_asset_id"`
	Claimer         string `json:"claimer"`
	Token           string `json:"token"`
}

// CoreMetadata is the on-chain registration record of an IP asset.
type CoreMetadata struct {
	Owner            string
	RegistrationDate time.Time
	MetadataURI      string
	MetadataHash     string
	NFTTokenURI      string
	NFTMetadataHash  string
}

// Client is the narrow contract this service consumes from the ledger. All
// operations are single-shot; none retries internally.
type Client interface {
	RegisterOriginal(ctx context.Context, signer SigningContext, req RegisterOriginalRequest) (*RegisterOriginalResult, error)
	RegisterDerivative(ctx context.Context, signer SigningContext, req RegisterDerivativeRequest) (*RegisterDerivativeResult, error)
	MintLicense(ctx context.Context, signer SigningContext, req MintLicenseRequest) (*MintLicenseResult, error)
	PayRoyalty(ctx context.Context, signer SigningContext, req PayRoyaltyRequest) (*PayRoyaltyResult, error)
	ClaimableRevenue(ctx context.Context, req ClaimableRequest) (string, error)
	ClaimAllRevenue(ctx context.Context, signer SigningContext, req ClaimRevenueRequest) (*ClaimRevenueResult, error)
	CoreMetadata(ctx context.Context, assetID string) (*CoreMetadata, error)
}
