package orchestrator

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// ParseTypedData decodes an EIP-712 typed-data document that the backend
// delivers either as a JSON object or as a JSON-encoded string containing
// the object.
func ParseTypedData(raw json.RawMessage) (apitypes.TypedData, error) {
	var typedData apitypes.TypedData
	if len(raw) == 0 {
		return typedData, fmt.Errorf("typed-data document is empty")
	}

	payload := []byte(raw)
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		payload = []byte(asString)
	}

	if err := json.Unmarshal(payload, &typedData); err != nil {
		return typedData, fmt.Errorf("invalid typed-data document: %w", err)
	}
	if typedData.PrimaryType == "" || len(typedData.Types) == 0 {
		return typedData, fmt.Errorf("typed-data document missing types or primary type")
	}
	return typedData, nil
}
