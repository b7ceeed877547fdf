package config

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// PolicyIDLength is the byte length of a Cardano policy id (blake2b-224).
const PolicyIDLength = 28

// ParsePolicyID checks that input is a hex encoded policy id.
func ParsePolicyID(input string) error {
	if input == "" {
		return fmt.Errorf("policy id is required")
	}
	data, err := hexutil.Decode("0x" + input)
	if err != nil {
		return fmt.Errorf("invalid policy id: %s", input)
	}
	if len(data) != PolicyIDLength {
		return fmt.Errorf("invalid policy id length: %s", input)
	}
	return nil
}
