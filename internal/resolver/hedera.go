package resolver

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Hedera entity ids (shard.realm.num) map onto 20-byte EVM addresses as
// 4 bytes of shard, 8 of realm, 8 of num, all big-endian.

// IsEntityID reports whether input looks like a shard.realm.num id.
func IsEntityID(input string) bool {
	parts := strings.Split(input, ".")
	if len(parts) != 3 {
		return false
	}
	for _, part := range parts {
		if part == "" {
			return false
		}
		if _, err := strconv.ParseUint(part, 10, 64); err != nil {
			return false
		}
	}
	return true
}

// EntityIDToAddress converts shard.realm.num to its EVM-mirror address.
func EntityIDToAddress(id string) (common.Address, error) {
	parts := strings.Split(id, ".")
	if len(parts) != 3 {
		return common.Address{}, fmt.Errorf("invalid entity id: %s", id)
	}
	shard, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid shard in %s: %w", id, err)
	}
	realm, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid realm in %s: %w", id, err)
	}
	num, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid num in %s: %w", id, err)
	}

	var addr common.Address
	binary.BigEndian.PutUint32(addr[0:4], uint32(shard))
	binary.BigEndian.PutUint64(addr[4:12], realm)
	binary.BigEndian.PutUint64(addr[12:20], num)
	return addr, nil
}

// AddressToEntityID converts an EVM-mirror address back to shard.realm.num.
// Long-zero addresses are the only ones with a native id; anything else
// (an ERC20 facade contract, for example) has no entity-id form.
func AddressToEntityID(addr common.Address) (string, error) {
	shard := binary.BigEndian.Uint32(addr[0:4])
	realm := binary.BigEndian.Uint64(addr[4:12])
	num := binary.BigEndian.Uint64(addr[12:20])
	if shard != 0 || realm != 0 {
		return "", fmt.Errorf("not a long-zero address: %s", addr.Hex())
	}
	return fmt.Sprintf("0.0.%d", num), nil
}
