package vaultapi

// Custody-side transfer statuses the trackers react to. Anything else is
// logged as unrecognized and left alone.
const (
	TransferStatusNew      = "New"
	TransferStatusRejected = "Rejected"
	TransferStatusFailed   = "Failed"
)

// TransferStatus is the engine's view of one custody-side transfer.
type TransferStatus struct {
	Status string
	TxHash string
}

type transferDetailsResponse struct {
	Transaction struct {
		Status string `json:"Status"`
		TxHash string `json:"TxHash"`
	} `json:"Transaction"`
}

type vaultAssetResponse struct {
	Addresses []vaultAddress `json:"Addresses"`
}

type vaultAddress struct {
	Address     string `json:"Address"`
	MainAddress bool   `json:"MainAddress"`
}

type transferRequest struct {
	FeePriority string `json:"FeePriority"`
	Gross       bool   `json:"Gross"`
	IsInternal  bool   `json:"IsInternal"`
	IsRecurring bool   `json:"IsRecurring"`
	Amount      string `json:"Amount"`
	Asset       string `json:"Asset"`
	Destination string `json:"Destination"`
	FromVaultID int    `json:"FromVaultId"`
	Reference   string `json:"Reference"`
	FeeRate     string `json:"FeeRate"`
}
