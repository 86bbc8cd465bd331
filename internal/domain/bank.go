package domain

import (
	"context"
	"encoding/json"
)

// Bank is a Paystack bank entry. Only name, code and active are interpreted;
// the processor's original JSON is relayed unchanged.
type Bank struct {
	Name   string
	Code   string
	Active *bool
	raw    json.RawMessage
}

type bankFields struct {
	Name   string `json:"name,omitempty"`
	Code   string `json:"code,omitempty"`
	Active *bool  `json:"active,omitempty"`
}

func (b *Bank) UnmarshalJSON(data []byte) error {
	var f bankFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	b.Name, b.Code, b.Active = f.Name, f.Code, f.Active
	b.raw = append(json.RawMessage(nil), data...)
	return nil
}

func (b Bank) MarshalJSON() ([]byte, error) {
	if b.raw != nil {
		return b.raw, nil
	}
	return json.Marshal(bankFields{Name: b.Name, Code: b.Code, Active: b.Active})
}

// IsActive follows the processor convention: only an explicit false disables a bank.
func (b Bank) IsActive() bool {
	return b.Active == nil || *b.Active
}

type AccountResolution struct {
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
	BankID        int    `json:"bank_id"`
}

type VerifyAccountRequest struct {
	AccountNumber string `json:"account_number"`
	BankCode      string `json:"bank_code"`
}

type BankUsecase interface {
	ListBanks(ctx context.Context) ([]Bank, error)
	VerifyAccount(ctx context.Context, req *VerifyAccountRequest) (*AccountResolution, error)
}
