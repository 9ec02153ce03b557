// internal/ledger/explorer.go
package ledger

import "strings"

// Explorer URL conventions. Pure string templates, no protocol behavior.

func ExplorerAssetURL(baseURL, assetID string) string {
	return strings.TrimRight(baseURL, "/") + "/ipa/" + assetID
}

func ExplorerTxURL(baseURL, txHash string) string {
	return strings.TrimRight(baseURL, "/") + "/tx/" + txHash
}
