package wallet

import (
	"crypto/sha256"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// SHA256 returns the 0x prefixed hex SHA-256 of the data.
func SHA256(data []byte) string {
	hash := sha256.Sum256(data)
	return hexutil.Encode(hash[:])
}

// Keccak256 returns the 0x prefixed hex Keccak-256 of the data.
func Keccak256(data []byte) string {
	return hexutil.Encode(crypto.Keccak256(data))
}
