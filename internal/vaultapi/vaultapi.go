package vaultapi

import (
	"encoding/json"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/abc-custody/custody-backend/internal/model"
	"github.com/abc-custody/custody-backend/internal/utils/config"
	"github.com/abc-custody/custody-backend/internal/utils/logger"
)

type VaultAPI struct {
	client         *resty.Client
	transferIDKeys []string
	appConfig      *config.AppConfig
	logger         *logger.Logger
}

func New(appConfig *config.AppConfig, logger *logger.Logger) IVaultAPI {
	client := resty.New().
		SetBaseURL(appConfig.Vault.APIURL).
		SetHeader("accept", "application/json").
		SetHeader("Authorization", appConfig.Vault.APIKey)

	return &VaultAPI{
		client:         client,
		transferIDKeys: defaultTransferIDKeys,
		appConfig:      appConfig,
		logger:         logger,
	}
}

// SetTransferIDKeys overrides the ordered id-extraction rules.
func (v *VaultAPI) SetTransferIDKeys(keys []string) {
	v.transferIDKeys = keys
}

func (v *VaultAPI) InitiateTransfer(withdrawal *model.Withdrawal, fromVaultID int) (string, error) {
	req := transferRequest{
		FeePriority: "High",
		Gross:       true,
		IsInternal:  false,
		IsRecurring: false,
		Amount:      withdrawal.Amount.String(),
		Asset:       withdrawal.Currency,
		Destination: withdrawal.ToAddress,
		FromVaultID: fromVaultID,
		Reference:   fmt.Sprintf("Withdrawal-%s", withdrawal.ID),
		FeeRate:     "1",
	}

	resp, err := v.client.R().
		SetHeader("content-type", "application/json").
		SetBody(req).
		Post("/transactions/transfer")
	if err != nil {
		return "", errors.Wrap(err, "transfer request failed")
	}

	if resp.IsError() {
		v.logger.Error("[InitiateTransfer] custody api error", map[string]string{
			"status": resp.Status(),
			"body":   string(resp.Body()),
		})
		return "", errors.Errorf("custody api error: status %s", resp.Status())
	}

	var body map[string]interface{}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		v.logger.Error("[InitiateTransfer] non-json response", map[string]string{
			"body": string(resp.Body()),
		})
		return "", errors.Wrap(err, "custody api returned a non-json response")
	}

	assignedID, err := extractTransferID(body, v.transferIDKeys)
	if err != nil {
		// raw body logged so a new field name can be added to the rules
		v.logger.Error("[InitiateTransfer] unable to extract transaction id", map[string]string{
			"body": string(resp.Body()),
		})
		return "", err
	}

	return assignedID, nil
}

func (v *VaultAPI) TransferStatus(assignedID string) (*TransferStatus, error) {
	resp, err := v.client.R().
		Get(fmt.Sprintf("/transactions/%s", assignedID))
	if err != nil {
		return nil, errors.Wrap(err, "transfer status request failed")
	}

	if resp.IsError() {
		v.logger.Error("[TransferStatus] custody api error", map[string]string{
			"assignedId": assignedID,
			"status":     resp.Status(),
			"body":       string(resp.Body()),
		})
		return nil, errors.Errorf("custody api error: status %s", resp.Status())
	}

	var details transferDetailsResponse
	if err := json.Unmarshal(resp.Body(), &details); err != nil {
		v.logger.Error("[TransferStatus] non-json response", map[string]string{
			"assignedId": assignedID,
			"body":       string(resp.Body()),
		})
		return nil, errors.Wrap(err, "custody api returned a non-json response")
	}

	if details.Transaction.Status == "" && details.Transaction.TxHash == "" {
		v.logger.Error("[TransferStatus] unexpected response shape", map[string]string{
			"assignedId": assignedID,
			"body":       string(resp.Body()),
		})
		return nil, errors.New("custody api response missing Transaction")
	}

	return &TransferStatus{
		Status: details.Transaction.Status,
		TxHash: details.Transaction.TxHash,
	}, nil
}

func (v *VaultAPI) VaultReceiveAddress(vaultID int, asset string) (string, error) {
	resp, err := v.client.R().
		Get(fmt.Sprintf("/api/vaults/%d/assets/%s", vaultID, asset))
	if err != nil {
		return "", errors.Wrap(err, "vault asset request failed")
	}

	if resp.IsError() {
		return "", errors.Errorf("custody api error: status %s", resp.Status())
	}

	var body vaultAssetResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return "", errors.Wrap(err, "custody api returned a non-json response")
	}

	if len(body.Addresses) == 0 {
		return "", errors.Errorf("vault %d has no %s address", vaultID, asset)
	}

	for _, addr := range body.Addresses {
		if addr.MainAddress {
			return addr.Address, nil
		}
	}
	return body.Addresses[0].Address, nil
}
