package orderid

import (
	"encoding/hex"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
)

// OrderInitiatedTopic is the event signature hash of the bridge contract's
// OrderInitiated event.
const OrderInitiatedTopic = "0xfba6a68bf5ec51e167735408b7eb881b28929f9c0c3ed0db4ea6eb1015261fd6"

var orderInitiatedTopic = common.HexToHash(OrderInitiatedTopic)

// FromReceipt extracts the bytes32 order id from the OrderInitiated log of a
// transaction receipt. The order id is the first 32 bytes of the matching
// log's data, returned 0x-prefixed. Returns "" when the receipt has no logs,
// no matching log, or the matching log's data is too short; callers must
// treat "" as order id unavailable.
func FromReceipt(receipt *ethtypes.Receipt) string {
	if receipt == nil || len(receipt.Logs) == 0 {
		return ""
	}
	for _, entry := range receipt.Logs {
		if entry == nil || len(entry.Topics) == 0 || entry.Topics[0] != orderInitiatedTopic {
			continue
		}
		if len(entry.Data) < 32 {
			return ""
		}
		return "0x" + hex.EncodeToString(entry.Data[:32])
	}
	return ""
}
