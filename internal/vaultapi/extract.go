package vaultapi

import (
	"fmt"

	"github.com/pkg/errors"
)

// The custody API has returned its assigned transaction id under different
// field names across versions. Rules are tried in order; first match wins.
// Override per deployment with SetTransferIDKeys before use.
var defaultTransferIDKeys = []string{
	"TransactionId",
	"TransferId",
	"TxId",
	"Id",
	"transactionId",
	"transferId",
	"id",
}

// extractTransferID resolves the assigned transaction id from a decoded
// response object. No matching rule is a hard error; callers log the raw
// body for diagnosis.
func extractTransferID(body map[string]interface{}, keys []string) (string, error) {
	for _, key := range keys {
		value, ok := body[key]
		if !ok {
			continue
		}

		switch v := value.(type) {
		case string:
			if v != "" {
				return v, nil
			}
		case float64:
			// JSON numbers decode as float64; ids are integral.
			return fmt.Sprintf("%.0f", v), nil
		}
	}

	return "", errors.Errorf("no transaction id found under any of %v", keys)
}
