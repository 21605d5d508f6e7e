package stripe

import (
	"context"
	"errors"
	"strings"

	"highlight-api/internal/infra/metrics"

	stripego "github.com/stripe/stripe-go/v75"
	checkoutsession "github.com/stripe/stripe-go/v75/checkout/session"
	"github.com/stripe/stripe-go/v75/price"
	"github.com/stripe/stripe-go/v75/webhook"
)

var ErrNotConfigured = errors.New("stripe is not configured")

type CheckoutParams struct {
	PriceID    string
	Email      string
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

type CheckoutSession struct {
	ID            string
	URL           string
	Status        string
	PaymentStatus string
	AmountTotal   int64
	Currency      string
	Metadata      map[string]string
}

type Price struct {
	ID          string
	ProductID   string
	ProductName string
	UnitAmount  int64
	Currency    string
	Metadata    map[string]string
}

// Gateway is the subset of Stripe the API depends on.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, p CheckoutParams) (CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, id string) (CheckoutSession, error)
	ListOneTimePrices(ctx context.Context, productID string) ([]Price, error)
	ConstructEvent(payload []byte, signature string) (stripego.Event, error)
}

type Client struct {
	webhookSecret string
}

// NewClient sets the package-level Stripe key used by stripe-go's resource packages.
func NewClient(secretKey, webhookSecret string) *Client {
	stripego.Key = secretKey
	return &Client{webhookSecret: webhookSecret}
}

func (c *Client) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (CheckoutSession, error) {
	params := &stripego.CheckoutSessionParams{
		SuccessURL: stripego.String(p.SuccessURL),
		CancelURL:  stripego.String(p.CancelURL),
		Mode:       stripego.String(string(stripego.CheckoutSessionModePayment)),
		LineItems: []*stripego.CheckoutSessionLineItemParams{
			{Price: stripego.String(p.PriceID), Quantity: stripego.Int64(1)},
		},
	}
	params.Metadata = p.Metadata
	if p.Email != "" {
		params.CustomerEmail = stripego.String(p.Email)
	}
	if ref := p.Metadata["project_id"]; ref != "" {
		params.ClientReferenceID = stripego.String(ref)
	}
	params.Context = ctx

	s, err := checkoutsession.New(params)
	metrics.ObserveExternal("stripe", "checkout.create", err)
	if err != nil {
		return CheckoutSession{}, err
	}
	return fromSession(s), nil
}

func (c *Client) GetCheckoutSession(ctx context.Context, id string) (CheckoutSession, error) {
	params := &stripego.CheckoutSessionParams{}
	params.Context = ctx

	s, err := checkoutsession.Get(id, params)
	metrics.ObserveExternal("stripe", "checkout.get", err)
	if err != nil {
		return CheckoutSession{}, err
	}
	return fromSession(s), nil
}

// ListOneTimePrices returns active one-time prices, optionally limited to productID.
func (c *Client) ListOneTimePrices(ctx context.Context, productID string) ([]Price, error) {
	params := &stripego.PriceListParams{}
	params.Active = stripego.Bool(true)
	params.Type = stripego.String(string(stripego.PriceTypeOneTime))
	if productID != "" {
		params.Product = stripego.String(productID)
	}
	params.AddExpand("data.product")
	params.Context = ctx

	var out []Price
	it := price.List(params)
	for it.Next() {
		p := it.Price()
		if !p.Active || p.Product == nil || !p.Product.Active {
			continue
		}
		out = append(out, Price{
			ID:          p.ID,
			ProductID:   p.Product.ID,
			ProductName: p.Product.Name,
			UnitAmount:  p.UnitAmount,
			Currency:    string(p.Currency),
			Metadata:    p.Metadata,
		})
	}
	metrics.ObserveExternal("stripe", "price.list", it.Err())
	if err := it.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ConstructEvent(payload []byte, signature string) (stripego.Event, error) {
	if c.webhookSecret == "" {
		return stripego.Event{}, ErrNotConfigured
	}
	return webhook.ConstructEventWithOptions(payload, signature, c.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
}

func fromSession(s *stripego.CheckoutSession) CheckoutSession {
	return CheckoutSession{
		ID:            s.ID,
		URL:           s.URL,
		Status:        string(s.Status),
		PaymentStatus: NormalizePaymentStatus(string(s.PaymentStatus)),
		AmountTotal:   s.AmountTotal,
		Currency:      strings.ToLower(string(s.Currency)),
		Metadata:      s.Metadata,
	}
}

// SessionFromEvent decodes the checkout session carried by a webhook event.
func SessionFromEvent(raw *stripego.CheckoutSession) CheckoutSession {
	return fromSession(raw)
}
