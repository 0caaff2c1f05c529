package services

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

const paystackBaseURL = "https://api.paystack.co"

// PaymentInit is the subset of Paystack's initialize response the frontend
// needs to redirect the buyer.
type PaymentInit struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type initResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    PaymentInit `json:"data"`
}

type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status    string `json:"status"`
		Reference string `json:"reference"`
	} `json:"data"`
}

// Paystack talks to the payment gateway. Only the fields this backend
// consumes are modeled.
type Paystack struct {
	client *resty.Client
	secret string
}

func NewPaystack(secretKey string) *Paystack {
	return &Paystack{
		client: resty.New().SetBaseURL(paystackBaseURL),
		secret: secretKey,
	}
}

// SetBaseURL overrides the gateway endpoint. Tests point this at an
// httptest server.
func (p *Paystack) SetBaseURL(url string) *Paystack {
	p.client.SetBaseURL(url)
	return p
}

// InitializeTransaction starts a checkout. Amount is in kobo.
func (p *Paystack) InitializeTransaction(ctx context.Context, email string, amountKobo int64, reference, callbackURL string, metadata map[string]interface{}) (*PaymentInit, error) {
	var out initResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(p.secret).
		SetBody(map[string]interface{}{
			"email":        email,
			"amount":       amountKobo,
			"reference":    reference,
			"callback_url": callbackURL,
			"metadata":     metadata,
		}).
		SetResult(&out).
		Post("/transaction/initialize")
	if err != nil {
		return nil, fmt.Errorf("paystack initialize: %w", err)
	}
	if resp.IsError() || !out.Status {
		return nil, fmt.Errorf("paystack initialize: %s (http %d)", out.Message, resp.StatusCode())
	}
	return &out.Data, nil
}

// VerifyTransaction returns the gateway-side status ("success", "failed",
// "abandoned") for a reference.
func (p *Paystack) VerifyTransaction(ctx context.Context, reference string) (string, error) {
	var out verifyResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(p.secret).
		SetResult(&out).
		Get("/transaction/verify/" + reference)
	if err != nil {
		return "", fmt.Errorf("paystack verify: %w", err)
	}
	if resp.IsError() || !out.Status {
		return "", fmt.Errorf("paystack verify: %s (http %d)", out.Message, resp.StatusCode())
	}
	return out.Data.Status, nil
}
