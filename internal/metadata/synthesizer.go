// internal/metadata/synthesizer.go
package metadata

import (
	"fmt"
	"strings"
	"time"
)

// Source is the sensor dataset a registration originates from. RawPayload
// carries the exact source bytes; the synthesizer never reorders, filters or
// truncates it.
type Source struct {
	ID           string
	SensorType   string
	Title        string
	Location     string
	RecordedAt   time.Time
	SensorHealth string
	RawPayload   string
}

type Creator struct {
	Name                string `json:"name"`
	Address             string `json:"address"`
	ContributionPercent int    `json:"contributionPercent"`
}

// KnowledgeRef points at an uploaded knowledge artifact. The hash here is the
// artifact's own digest, computed upstream over the uploaded bytes.
type KnowledgeRef struct {
	URL  string `json:"url"`
	Hash string `json:"hash"`
}

// AssetDoc is the asset-level descriptive metadata document. It carries no
// digest of itself; hashing happens downstream over the serialized bytes.
type AssetDoc struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	CreatedAt   string        `json:"createdAt"`
	IPType      string        `json:"ipType"`
	Creators    []Creator     `json:"creators"`
	AIMetadata  *KnowledgeRef `json:"aiMetadata,omitempty"`
}

type TokenAttribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

// TokenDoc is the token-level display metadata document.
type TokenDoc struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Attributes  []TokenAttribute `json:"attributes"`
}

type KnowledgeSection struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

// KnowledgeDoc is the generated natural-language artifact describing the
// source dataset. It is a deterministic function of the source record; no
// clocks, counters or network input feed it.
type KnowledgeDoc struct {
	Title    string             `json:"title"`
	Summary  string             `json:"summary"`
	Sections []KnowledgeSection `json:"sections"`
}

// ParentLineage identifies the licensed parent a derivative builds on.
type ParentLineage struct {
	AssetID        string
	CreatorAddress string
	TermsID        string
	RawPayload     string
}

const preservationGuarantee = "The original source data is preserved in full below, byte for byte. " +
	"This derivative layers additional documentation over the untouched parent data; " +
	"no field of the parent payload has been omitted, filtered, or altered."

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ShortAssetID renders an address-like id in display form, first six and last
// four characters.
func ShortAssetID(id string) string {
	if len(id) <= 10 {
		return id
	}
	return id[:6] + "..." + id[len(id)-4:]
}

// BuildKnowledgeArtifact synthesizes the knowledge document for a source
// record.
func BuildKnowledgeArtifact(src Source) KnowledgeDoc {
	recorded := src.RecordedAt.UTC().Format(time.RFC3339)

	summary := fmt.Sprintf(
		"%s dataset %q captured at %s on %s. Reported sensor health: %s.",
		capitalize(src.SensorType), src.Title, src.Location, recorded, src.SensorHealth)

	sections := []KnowledgeSection{
		{
			Heading: "Overview",
			Body: fmt.Sprintf(
				"This knowledge artifact documents a %s sensor dataset titled %q. "+
					"It was recorded at %s and is registered as intellectual property "+
					"with verifiable on-chain provenance.",
				src.SensorType, src.Title, src.Location),
		},
		{
			Heading: "Provenance",
			Body: fmt.Sprintf(
				"Capture timestamp: %s. Sensor health at capture: %s. "+
					"The dataset identifier within the originating network is %s.",
				recorded, src.SensorHealth, src.ID),
		},
	}

	if src.RawPayload != "" {
		sections = append(sections, KnowledgeSection{
			Heading: "Source Data",
			Body:    src.RawPayload,
		})
	}

	return KnowledgeDoc{
		Title:    fmt.Sprintf("Knowledge Artifact: %s", src.Title),
		Summary:  summary,
		Sections: sections,
	}
}

// BuildOriginal synthesizes the two metadata documents for an original
// registration. Exactly one creator, full contribution.
func BuildOriginal(src Source, creatorName, creatorAddress string, knowledge KnowledgeRef) (AssetDoc, TokenDoc) {
	recorded := src.RecordedAt.UTC().Format(time.RFC3339)

	asset := AssetDoc{
		Title: src.Title,
		Description: fmt.Sprintf(
			"%s sensor dataset captured at %s on %s. Registered as an original IP asset by %s.",
			src.SensorType, src.Location, recorded, creatorName),
		CreatedAt: recorded,
		IPType:    "dataset",
		Creators: []Creator{
			{Name: creatorName, Address: creatorAddress, ContributionPercent: 100},
		},
		AIMetadata: &KnowledgeRef{URL: knowledge.URL, Hash: knowledge.Hash},
	}

	token := TokenDoc{
		Name: src.Title,
		Description: fmt.Sprintf("Ownership token for the %q sensor dataset registered as an IP asset.",
			src.Title),
		Attributes: tokenAttributes(src, recorded),
	}

	return asset, token
}

// BuildDerivative synthesizes the metadata documents for a derivative
// registration. The description embeds the parent lineage and carries the
// parent's raw payload verbatim; everything added is strictly additive.
func BuildDerivative(src Source, creatorName, creatorAddress string, parent ParentLineage, knowledge KnowledgeRef) (AssetDoc, TokenDoc) {
	recorded := src.RecordedAt.UTC().Format(time.RFC3339)

	var desc strings.Builder
	fmt.Fprintf(&desc,
		"Derivative work based on parent IP asset %s (%s), registered under license terms %s.\n",
		parent.AssetID, ShortAssetID(parent.AssetID), parent.TermsID)
	fmt.Fprintf(&desc, "Parent creator address: %s.\n", parent.CreatorAddress)
	fmt.Fprintf(&desc, "Derivative created by %s from the %s dataset %q recorded at %s on %s.\n\n",
		creatorName, src.SensorType, src.Title, src.Location, recorded)
	desc.WriteString(preservationGuarantee)
	if parent.RawPayload != "" {
		desc.WriteString("\n\n--- Preserved parent source data ---\n")
		desc.WriteString(parent.RawPayload)
	}

	asset := AssetDoc{
		Title:       src.Title,
		Description: desc.String(),
		CreatedAt:   recorded,
		IPType:      "dataset-derivative",
		Creators: []Creator{
			{Name: creatorName, Address: creatorAddress, ContributionPercent: 100},
		},
		AIMetadata: &KnowledgeRef{URL: knowledge.URL, Hash: knowledge.Hash},
	}

	attributes := tokenAttributes(src, recorded)
	attributes = append(attributes, TokenAttribute{
		TraitType: "Parent IP Asset",
		Value:     ShortAssetID(parent.AssetID),
	})

	token := TokenDoc{
		Name: src.Title,
		Description: fmt.Sprintf("Ownership token for a derivative of IP asset %s.",
			ShortAssetID(parent.AssetID)),
		Attributes: attributes,
	}

	return asset, token
}

func tokenAttributes(src Source, recorded string) []TokenAttribute {
	return []TokenAttribute{
		{TraitType: "Data Type", Value: src.SensorType},
		{TraitType: "Location", Value: src.Location},
		{TraitType: "Sensor Health", Value: src.SensorHealth},
		{TraitType: "Recorded At", Value: recorded},
	}
}
