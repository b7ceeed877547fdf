package model

import (
	"strings"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// AssetName returns the human readable asset name encoded in assetID.
// An asset id is the policy id followed by the hex encoded asset name.
// When the name is not valid UTF-8 its hex form is returned.
func AssetName(assetID, policy string) string {
	hexName := strings.TrimPrefix(assetID, policy)
	if hexName == "" {
		return ""
	}
	data, err := hexutil.Decode("0x" + hexName)
	if err != nil || !utf8.Valid(data) {
		return hexName
	}
	return string(data)
}
