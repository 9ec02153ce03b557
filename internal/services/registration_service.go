// internal/services/registration_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sensorgrid/ipflow-backend/internal/apperrors"
	"github.com/sensorgrid/ipflow-backend/internal/config"
	"github.com/sensorgrid/ipflow-backend/internal/contenthash"
	"github.com/sensorgrid/ipflow-backend/internal/ledger"
	"github.com/sensorgrid/ipflow-backend/internal/metadata"
	"github.com/sensorgrid/ipflow-backend/internal/models"
	"github.com/sensorgrid/ipflow-backend/internal/pinning"
)

// RegistrationStep is the observable stage of a registration flow. Steps are
// strictly ordered; the flow advances one step at a time and never goes back.
type RegistrationStep int

const (
	StepIdle RegistrationStep = iota
	StepKnowledge
	StepAssemble
	StepUploadMetadata
	StepSubmit
	StepPersist
	StepDone
	StepFailed
)

func (s RegistrationStep) String() string {
	switch s {
	case StepIdle:
		return "idle"
	case StepKnowledge:
		return "knowledge_artifact"
	case StepAssemble:
		return "assemble_metadata"
	case StepUploadMetadata:
		return "upload_metadata"
	case StepSubmit:
		return "submit_registration"
	case StepPersist:
		return "persist_index"
	case StepDone:
		return "done"
	case StepFailed:
		return "failed"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// ProgressFunc observes step transitions. The step index it receives is
// strictly increasing within one flow.
type ProgressFunc func(step RegistrationStep)

// flow advances by exactly one step per call, which makes the progress signal
// monotonic and non-skippable by construction.
type flow struct {
	current  RegistrationStep
	progress ProgressFunc
}

func newFlow(progress ProgressFunc) *flow {
	return &flow{current: StepIdle, progress: progress}
}

func (f *flow) next() RegistrationStep {
	f.current++
	logrus.WithField("step", f.current.String()).Debug("Registration flow advanced")
	if f.progress != nil {
		f.progress(f.current)
	}
	return f.current
}

// fail marks the flow terminal. StepFailed sits above every working step so
// the progress signal stays strictly increasing even when a flow aborts.
func (f *flow) fail() {
	f.current = StepFailed
	if f.progress != nil {
		f.progress(StepFailed)
	}
}

type RegistrationService struct {
	db        *gorm.DB
	pinClient *pinning.Client
	ledger    ledger.Client
	cfg       *config.Config
}

func NewRegistrationService(db *gorm.DB, pinClient *pinning.Client, ledgerClient ledger.Client, cfg *config.Config) *RegistrationService {
	return &RegistrationService{
		db:        db,
		pinClient: pinClient,
		ledger:    ledgerClient,
		cfg:       cfg,
	}
}

type RegisterOriginalRequest struct {
	Source         models.SensorRecord
	CreatorName    string
	CreatorAddress string
	Terms          ledger.LicenseTermsSpec
	Progress       ProgressFunc
}

type RegisterDerivativeRequest struct {
	Source               models.SensorRecord
	CreatorName          string
	CreatorAddress       string
	ParentIPID           string
	ParentTermsID        string
	ParentCreatorAddress string
	ParentRawPayload     string
	RoyaltyRecipient     string
	RoyaltyShare         *uint32
	MaxMintingFee        string
	MaxRevenueShare      *uint32
	MaxRoyaltyTokens     string
	Progress             ProgressFunc
}

type RegistrationResult struct {
	IPID             string `json:"ip_id"`
	TxHash           string `json:"tx_hash"`
	LicenseTermsID   string `json:"license_terms_id,omitempty"`
	MetadataURL      string `json:"metadata_url"`
	TokenMetadataURL string `json:"token_metadata_url"`
	ExplorerURL      string `json:"explorer_url"`
}

// uploadedDoc pairs a pinned document with the digest of the exact bytes that
// were uploaded.
type uploadedDoc struct {
	locator pinning.Locator
	hash    contenthash.Digest
}

// RegisterOriginal drives the full original-registration flow: knowledge
// artifact, metadata synthesis, hashing and upload, ledger submission, and the
// off-chain index write.
func (s *RegistrationService) RegisterOriginal(ctx context.Context, signer ledger.SigningContext, req *RegisterOriginalRequest) (*RegistrationResult, error) {
	if err := s.validateCommon(signer, req.CreatorName); err != nil {
		return nil, err
	}
	if err := validateTerms(req.Terms); err != nil {
		return nil, err
	}

	creatorAddress := req.CreatorAddress
	if creatorAddress == "" {
		creatorAddress = signer.WalletAddress
	}

	f := newFlow(req.Progress)

	// Stage 1: knowledge artifact.
	f.next()
	knowledge, err := s.uploadKnowledgeArtifact(ctx, req.Source)
	if err != nil {
		f.fail()
		return nil, err
	}

	// Stage 2: metadata synthesis.
	f.next()
	assetDoc, tokenDoc := metadata.BuildOriginal(toMetadataSource(req.Source), req.CreatorName, creatorAddress, knowledge)

	// Stage 3: hash and upload both documents.
	f.next()
	assetUp, tokenUp, err := s.uploadMetadataDocs(ctx, req.Source.Title, assetDoc, tokenDoc)
	if err != nil {
		f.fail()
		return nil, err
	}

	// Stage 4: ledger submission.
	f.next()
	submitted, err := s.ledger.RegisterOriginal(ctx, signer, ledger.RegisterOriginalRequest{
		Spec:  s.mintSpec(creatorAddress, assetUp, tokenUp),
		Terms: []ledger.LicenseTermsSpec{req.Terms},
	})
	if err != nil {
		f.fail()
		return nil, err
	}

	termsID := ""
	if len(submitted.LicenseTermsIDs) > 0 {
		termsID = submitted.LicenseTermsIDs[0]
	}

	result := &RegistrationResult{
		IPID:             submitted.AssetID,
		TxHash:           submitted.TxHash,
		LicenseTermsID:   termsID,
		MetadataURL:      s.pinClient.GatewayURL(assetUp.locator),
		TokenMetadataURL: s.pinClient.GatewayURL(tokenUp.locator),
		ExplorerURL:      ledger.ExplorerAssetURL(s.cfg.Explorer.BaseURL, submitted.AssetID),
	}

	// Stage 5: off-chain index. Runs only after the on-chain action succeeded;
	// its failure is downgraded to a warning.
	f.next()
	s.persistRegistration(req.Source, models.Registration{
		SensorDataID:     req.Source.ID,
		OwnerID:          req.Source.OwnerID,
		RegistrationType: models.RegistrationTypeOriginal,
		IPID:             result.IPID,
		TxHash:           result.TxHash,
		LicenseTermsID:   termsID,
		CreatorName:      req.CreatorName,
		CreatorAddress:   creatorAddress,
		MetadataURL:      result.MetadataURL,
		MetadataHash:     assetUp.hash.Hex(),
		TokenMetadataURL: result.TokenMetadataURL,
		ExplorerURL:      result.ExplorerURL,
	})

	f.next() // done
	return result, nil
}

// RegisterDerivative drives the derivative flow. Beyond the common
// preconditions it refuses to start without a sensor record id: a derivative
// that cannot be associated with its originating dataset is never minted.
func (s *RegistrationService) RegisterDerivative(ctx context.Context, signer ledger.SigningContext, req *RegisterDerivativeRequest) (*RegistrationResult, error) {
	if err := s.validateCommon(signer, req.CreatorName); err != nil {
		return nil, err
	}
	if req.Source.ID == uuid.Nil {
		return nil, apperrors.NewValidationError("sensor_data_id", "sensor data record reference is required for derivative registration")
	}
	if req.ParentIPID == "" {
		return nil, apperrors.NewValidationError("parent_ip_id", "parent IP asset id is required")
	}
	if req.ParentTermsID == "" {
		return nil, apperrors.NewValidationError("parent_terms_id", "parent license terms id is required")
	}

	creatorAddress := req.CreatorAddress
	if creatorAddress == "" {
		creatorAddress = signer.WalletAddress
	}

	// Share fields are pointers so an explicit zero survives to the ledger;
	// only an absent value falls back to the configured default.
	royaltyShare := s.cfg.Ledger.DefaultRevenueShare
	if req.RoyaltyShare != nil {
		royaltyShare = *req.RoyaltyShare
	}
	if royaltyShare > 100 {
		return nil, apperrors.NewValidationError("royalty_share", "royalty share cannot exceed 100 percent")
	}
	maxMintingFee := req.MaxMintingFee
	if maxMintingFee == "" {
		maxMintingFee = s.cfg.Ledger.DefaultMintingFee
	}
	maxRevenueShare := uint32(100)
	if req.MaxRevenueShare != nil {
		maxRevenueShare = *req.MaxRevenueShare
	}
	royaltyRecipient := req.RoyaltyRecipient
	if royaltyRecipient == "" {
		royaltyRecipient = req.ParentCreatorAddress
	}

	f := newFlow(req.Progress)

	// Stage 1: knowledge artifact.
	f.next()
	knowledge, err := s.uploadKnowledgeArtifact(ctx, req.Source)
	if err != nil {
		f.fail()
		return nil, err
	}

	// Stage 2: metadata synthesis with parent lineage.
	f.next()
	lineage := metadata.ParentLineage{
		AssetID:        req.ParentIPID,
		CreatorAddress: req.ParentCreatorAddress,
		TermsID:        req.ParentTermsID,
		RawPayload:     req.ParentRawPayload,
	}
	assetDoc, tokenDoc := metadata.BuildDerivative(toMetadataSource(req.Source), req.CreatorName, creatorAddress, lineage, knowledge)

	// Stage 3: hash and upload both documents.
	f.next()
	assetUp, tokenUp, err := s.uploadMetadataDocs(ctx, req.Source.Title, assetDoc, tokenDoc)
	if err != nil {
		f.fail()
		return nil, err
	}

	// Stage 4: ledger submission, bound as a derivative of the parent. A
	// rejection here leaves the documents pinned but unreferenced; the
	// pinning network has no delete primitive and no cleanup is attempted.
	f.next()
	submitted, err := s.ledger.RegisterDerivative(ctx, signer, ledger.RegisterDerivativeRequest{
		Spec:             s.mintSpec(creatorAddress, assetUp, tokenUp),
		ParentAssetIDs:   []string{req.ParentIPID},
		LicenseTermsIDs:  []string{req.ParentTermsID},
		RoyaltyRecipient: royaltyRecipient,
		RoyaltyShares:    []uint32{royaltyShare},
		Bounds: ledger.DerivativeBounds{
			MaxMintingFee:    maxMintingFee,
			MaxRevenueShare:  maxRevenueShare,
			MaxRoyaltyTokens: req.MaxRoyaltyTokens,
		},
	})
	if err != nil {
		f.fail()
		return nil, err
	}

	result := &RegistrationResult{
		IPID:             submitted.AssetID,
		TxHash:           submitted.TxHash,
		MetadataURL:      s.pinClient.GatewayURL(assetUp.locator),
		TokenMetadataURL: s.pinClient.GatewayURL(tokenUp.locator),
		ExplorerURL:      ledger.ExplorerAssetURL(s.cfg.Explorer.BaseURL, submitted.AssetID),
	}

	// Stage 5: off-chain index keyed by the originating sensor record.
	f.next()
	s.persistRegistration(req.Source, models.Registration{
		SensorDataID:     req.Source.ID,
		OwnerID:          req.Source.OwnerID,
		RegistrationType: models.RegistrationTypeDerivative,
		IPID:             result.IPID,
		TxHash:           result.TxHash,
		ParentIPID:       req.ParentIPID,
		ParentTermsID:    req.ParentTermsID,
		CreatorName:      req.CreatorName,
		CreatorAddress:   creatorAddress,
		MetadataURL:      result.MetadataURL,
		MetadataHash:     assetUp.hash.Hex(),
		TokenMetadataURL: result.TokenMetadataURL,
		ExplorerURL:      result.ExplorerURL,
	})

	f.next() // done
	return result, nil
}

// RegistrationBySensorData reads the off-chain index row for a sensor record.
func (s *RegistrationService) RegistrationBySensorData(sensorDataID uuid.UUID) (*models.Registration, error) {
	var registration models.Registration
	if err := s.db.Where("sensor_data_id = ?", sensorDataID).First(&registration).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("registration not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &registration, nil
}

func (s *RegistrationService) validateCommon(signer ledger.SigningContext, creatorName string) error {
	if creatorName == "" {
		return apperrors.NewValidationError("creator_name", "creator name is required")
	}
	if !signer.Connected() {
		return &apperrors.WalletNotConnectedError{}
	}
	return nil
}

func validateTerms(terms ledger.LicenseTermsSpec) error {
	if terms.RevenueSharePercent > 100 {
		return apperrors.NewValidationError("revenue_share_percent", "revenue share must be between 0 and 100")
	}
	if terms.MintingFee != "" {
		fee, ok := new(big.Int).SetString(terms.MintingFee, 10)
		if !ok || fee.Sign() < 0 {
			return apperrors.NewValidationError("minting_fee", "minting fee must be a non-negative integer amount")
		}
	}
	return nil
}

func (s *RegistrationService) uploadKnowledgeArtifact(ctx context.Context, source models.SensorRecord) (metadata.KnowledgeRef, error) {
	doc := metadata.BuildKnowledgeArtifact(toMetadataSource(source))

	serialized, err := contenthash.CanonicalJSON(doc)
	if err != nil {
		return metadata.KnowledgeRef{}, err
	}
	digest := contenthash.HashBytes(serialized)

	locator, err := s.pinClient.PinJSON(ctx, json.RawMessage(serialized), "knowledge-"+source.Title+".json")
	if err != nil {
		return metadata.KnowledgeRef{}, err
	}

	return metadata.KnowledgeRef{
		URL:  s.pinClient.GatewayURL(locator),
		Hash: digest.Hex(),
	}, nil
}

// uploadMetadataDocs serializes both documents, hashes the serialized bytes,
// and uploads exactly those bytes. The ordering matters: the on-chain hash
// must always match the stored content.
func (s *RegistrationService) uploadMetadataDocs(ctx context.Context, title string, assetDoc metadata.AssetDoc, tokenDoc metadata.TokenDoc) (uploadedDoc, uploadedDoc, error) {
	assetUp, err := s.uploadDoc(ctx, assetDoc, "ip-metadata-"+title+".json")
	if err != nil {
		return uploadedDoc{}, uploadedDoc{}, err
	}

	tokenUp, err := s.uploadDoc(ctx, tokenDoc, "nft-metadata-"+title+".json")
	if err != nil {
		return uploadedDoc{}, uploadedDoc{}, err
	}

	return assetUp, tokenUp, nil
}

func (s *RegistrationService) uploadDoc(ctx context.Context, doc interface{}, name string) (uploadedDoc, error) {
	serialized, err := contenthash.CanonicalJSON(doc)
	if err != nil {
		return uploadedDoc{}, err
	}
	digest := contenthash.HashBytes(serialized)

	locator, err := s.pinClient.PinJSON(ctx, json.RawMessage(serialized), name)
	if err != nil {
		return uploadedDoc{}, err
	}

	return uploadedDoc{locator: locator, hash: digest}, nil
}

func (s *RegistrationService) mintSpec(recipient string, assetUp, tokenUp uploadedDoc) ledger.MintSpec {
	return ledger.MintSpec{
		Collection:        s.cfg.Ledger.Collection,
		Recipient:         recipient,
		MetadataURI:       string(assetUp.locator),
		MetadataHash:      assetUp.hash.Hex(),
		TokenMetadataURI:  string(tokenUp.locator),
		TokenMetadataHash: tokenUp.hash.Hex(),
	}
}

// persistRegistration upserts the off-chain index row. The on-chain action
// already succeeded when this runs, so a failure here is logged and swallowed:
// the user is never told a successful registration failed. The resulting index
// drift is an accepted trade-off; the log line carries everything an operator
// needs to reconcile.
func (s *RegistrationService) persistRegistration(source models.SensorRecord, registration models.Registration) {
	if source.ID == uuid.Nil {
		logrus.WithFields(logrus.Fields{
			"ip_id":   registration.IPID,
			"tx_hash": registration.TxHash,
		}).Warn("Registration has no sensor record id; skipping off-chain index write")
		return
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sensor_data_id"}},
		UpdateAll: true,
	}).Create(&registration).Error

	if err != nil {
		logrus.WithFields(logrus.Fields{
			"sensor_data_id": source.ID,
			"ip_id":          registration.IPID,
			"tx_hash":        registration.TxHash,
		}).WithError(err).Warn("Failed to persist registration to off-chain index")
	}
}

func toMetadataSource(record models.SensorRecord) metadata.Source {
	id := ""
	if record.ID != uuid.Nil {
		id = record.ID.String()
	}
	return metadata.Source{
		ID:           id,
		SensorType:   record.SensorType,
		Title:        record.Title,
		Location:     record.Location,
		RecordedAt:   record.RecordedAt,
		SensorHealth: record.SensorHealth,
		RawPayload:   record.RawPayload,
	}
}
