package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/fraudwatch/internal/client/models"
)

// Client is the contract of the remote fraud-detection service.
type Client interface {
	Login(ctx context.Context, email, password string, role models.Role) (*AuthResult, error)
	Register(ctx context.Context, user Registration) (*AuthResult, error)
	Predict(ctx context.Context, transactions []ScoringTransaction) (*PredictResult, error)
	ModelInfo(ctx context.Context) (*ModelInfo, error)
	DatasetInfo(ctx context.Context) (*DatasetInfo, error)
	Health(ctx context.Context) (*Health, error)
	TrainFromCSV(ctx context.Context) (*TrainResult, error)
	CurrentUser(ctx context.Context) (*models.Identity, error)
	Users(ctx context.Context) ([]models.Identity, error)
}

// TokenSource yields the bearer token to attach, or "" when there is none.
type TokenSource interface {
	Token() string
}

// Registration holds the sign-up fields.
type Registration struct {
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role,omitempty"`
}

// AuthResult is returned by Login and Register. Token is empty when the
// service did not issue one (register does not).
type AuthResult struct {
	Identity models.Identity
	Token    string
}

// ScoringTransaction is one record in the service's scoring schema.
// Amount is either a json.Number or the raw user-entered string.
type ScoringTransaction struct {
	Amount               any    `json:"Transaction Amount"`
	MerchantCategoryCode int    `json:"Merchant Category Code (MCC)"`
	ResponseCode         int    `json:"Transaction Response Code"`
	CardType             string `json:"Card Type"`
	Source               string `json:"Transaction Source"`
}

// Verdict is a per-transaction fraud flag. The service emits booleans or
// 0/1 integers.
type Verdict bool

func (v *Verdict) UnmarshalJSON(b []byte) error {
	switch string(b) {
	case "true", "1", "1.0":
		*v = true
	case "false", "0", "0.0":
		*v = false
	default:
		return fmt.Errorf("invalid verdict %s", string(b))
	}
	return nil
}

type PredictResult struct {
	Predictions       []Verdict `json:"predictions"`
	TotalTransactions int       `json:"total_transactions"`
	FraudCount        int       `json:"fraud_count"`
	FraudPercentage   float64   `json:"fraud_percentage"`
}

type ModelInfo struct {
	ModelExists  bool    `json:"model_exists"`
	ModelType    string  `json:"model_type,omitempty"`
	ModelSizeMB  float64 `json:"model_size_mb,omitempty"`
	LastModified string  `json:"last_modified,omitempty"`
	Message      string  `json:"message,omitempty"`
}

type DatasetInfo struct {
	TotalRows       int      `json:"total_rows"`
	Columns         []string `json:"columns,omitempty"`
	FraudCount      int      `json:"fraud_count"`
	FraudPercentage float64  `json:"fraud_percentage"`
	FileSizeMB      float64  `json:"file_size_mb"`
}

type Health struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// TrainResult is the outcome of a server-side training run. Metrics is kept
// raw since its shape depends on the model.
type TrainResult struct {
	Message     string                     `json:"message"`
	ModelSaved  bool                       `json:"model_saved"`
	Metrics     map[string]json.RawMessage `json:"metrics,omitempty"`
	DatasetInfo struct {
		TotalRows       int     `json:"total_rows"`
		FraudCount      int     `json:"fraud_count"`
		FraudPercentage float64 `json:"fraud_percentage"`
	} `json:"dataset_info"`
}
