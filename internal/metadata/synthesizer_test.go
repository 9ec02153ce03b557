// internal/metadata/synthesizer_test.go
package metadata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSource() Source {
	recorded, _ := time.Parse(time.RFC3339, "2024-01-15T18:00:00Z")
	return Source{
		ID:           "rec-42",
		SensorType:   "moisture",
		Title:        "Soil Moisture Levels",
		Location:     "Field 7, Sector B",
		RecordedAt:   recorded,
		SensorHealth: "96%",
		RawPayload:   `{"readings":[0.41,0.42,0.44],"unit":"m3/m3"}`,
	}
}

func TestBuildKnowledgeArtifactDeterministic(t *testing.T) {
	d1 := BuildKnowledgeArtifact(testSource())
	d2 := BuildKnowledgeArtifact(testSource())
	assert.Equal(t, d1, d2)

	assert.Contains(t, d1.Summary, "Soil Moisture Levels")
	assert.Contains(t, d1.Summary, "96%")

	// Raw payload carried verbatim into the source-data section.
	require.Len(t, d1.Sections, 3)
	assert.Equal(t, testSource().RawPayload, d1.Sections[2].Body)
}

func TestBuildOriginalSingleCreatorFullContribution(t *testing.T) {
	asset, token := BuildOriginal(testSource(), "Alice", "0xA11CE", KnowledgeRef{
		URL:  "https://gateway.example.com/ipfs/QmKnow",
		Hash: "0xknowhash",
	})

	require.Len(t, asset.Creators, 1)
	assert.Equal(t, "Alice", asset.Creators[0].Name)
	assert.Equal(t, 100, asset.Creators[0].ContributionPercent)
	require.NotNil(t, asset.AIMetadata)
	assert.Equal(t, "0xknowhash", asset.AIMetadata.Hash)

	attrs := map[string]string{}
	for _, a := range token.Attributes {
		attrs[a.TraitType] = a.Value
	}
	assert.Equal(t, "Field 7, Sector B", attrs["Location"])
	assert.Equal(t, "96%", attrs["Sensor Health"])
	assert.Equal(t, "2024-01-15T18:00:00Z", attrs["Recorded At"])
}

func TestBuildDerivativePreservesParentPayloadVerbatim(t *testing.T) {
	parentPayload := `{"readings":[1,2,3],  "unit":"lux","nested":{"z":true,"a":null}}`
	parent := ParentLineage{
		AssetID:        "0x1234567890abcdef1234567890abcdef12345678",
		CreatorAddress: "0xParentCreator",
		TermsID:        "7",
		RawPayload:     parentPayload,
	}

	asset, token := BuildDerivative(testSource(), "Bob", "0xB0B", parent, KnowledgeRef{URL: "u", Hash: "h"})

	// Full and shortened parent id, parent creator, guarantee text.
	assert.Contains(t, asset.Description, parent.AssetID)
	assert.Contains(t, asset.Description, "0x1234...5678")
	assert.Contains(t, asset.Description, "0xParentCreator")
	assert.Contains(t, asset.Description, "preserved in full")

	// The parent payload appears byte-identical, odd spacing and all.
	assert.Contains(t, asset.Description, parentPayload)

	attrs := map[string]string{}
	for _, a := range token.Attributes {
		attrs[a.TraitType] = a.Value
	}
	assert.Equal(t, "0x1234...5678", attrs["Parent IP Asset"])
}

func TestShortAssetID(t *testing.T) {
	assert.Equal(t, "0xabcd...4321", ShortAssetID("0xabcdef9876543210deadbeef9876543210654321"))
	assert.Equal(t, "0xshort", ShortAssetID("0xshort"))
}

func TestDocsCarryNoSelfHash(t *testing.T) {
	asset, token := BuildOriginal(testSource(), "Alice", "0xA11CE", KnowledgeRef{URL: "u", Hash: "h"})

	// The documents reference the knowledge artifact hash but never embed a
	// digest of themselves; hashing happens over the serialized bytes later.
	assert.NotContains(t, asset.Description, "0x0")
	assert.Empty(t, tokenAttrValue(token, "Metadata Hash"))
}

func tokenAttrValue(doc TokenDoc, trait string) string {
	for _, a := range doc.Attributes {
		if a.TraitType == trait {
			return a.Value
		}
	}
	return ""
}
