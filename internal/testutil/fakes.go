package testutil

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"highlight-api/internal/infra/stripe"
	"highlight-api/internal/infra/videohost"

	stripego "github.com/stripe/stripe-go/v75"
)

// VideoHost is an in-memory videohost.Host.
type VideoHost struct {
	mu        sync.Mutex
	CreateErr error
	Uploads   map[string]videohost.Upload
	Assets    map[string]videohost.Asset
	Cancelled []string
	Deleted   []string
}

func NewVideoHost() *VideoHost {
	return &VideoHost{Uploads: map[string]videohost.Upload{}, Assets: map[string]videohost.Asset{}}
}

func (f *VideoHost) CreateUpload(_ context.Context, _, passthrough string) (videohost.Upload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateErr != nil {
		return videohost.Upload{}, f.CreateErr
	}
	up := videohost.Upload{ID: "up_" + passthrough, URL: "https://upload.test/" + passthrough, Status: videohost.UploadWaiting}
	f.Uploads[up.ID] = up
	return up, nil
}

func (f *VideoHost) GetUpload(_ context.Context, id string) (videohost.Upload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	up, ok := f.Uploads[id]
	if !ok {
		return videohost.Upload{}, videohost.ErrNotFound
	}
	return up, nil
}

func (f *VideoHost) CancelUpload(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Cancelled = append(f.Cancelled, id)
	return nil
}

func (f *VideoHost) GetAsset(_ context.Context, id string) (videohost.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.Assets[id]
	if !ok {
		return videohost.Asset{}, videohost.ErrNotFound
	}
	return a, nil
}

func (f *VideoHost) DeleteAsset(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Deleted = append(f.Deleted, id)
	return nil
}

// MarkReady moves an upload through to a ready asset with playback id pid.
func (f *VideoHost) MarkReady(uploadID, assetID, pid string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	up := f.Uploads[uploadID]
	up.Status = videohost.UploadAssetCreated
	up.AssetID = assetID
	f.Uploads[uploadID] = up
	f.Assets[assetID] = videohost.Asset{ID: assetID, Status: videohost.AssetReady,
		PlaybackIDs: []videohost.PlaybackID{{ID: pid, Policy: "public"}}}
}

// ObjectStore is an in-memory objectstore.Store.
type ObjectStore struct {
	mu      sync.Mutex
	PutErr  error
	Objects map[string][]byte
	Signed  int
}

func NewObjectStore() *ObjectStore {
	return &ObjectStore{Objects: map[string][]byte{}}
}

func (s *ObjectStore) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.PutErr != nil {
		return s.PutErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return err
	}
	s.Objects[key] = buf.Bytes()
	return nil
}

func (s *ObjectStore) SignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Objects[key]; !ok {
		return "", errors.New("object not found")
	}
	s.Signed++
	return "https://objects.test/" + key + "?token=abc", nil
}

func (s *ObjectStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Objects, key)
	return nil
}

// Payments is a scripted stripe.Gateway.
type Payments struct {
	mu       sync.Mutex
	Sessions map[string]stripe.CheckoutSession
	Prices   []stripe.Price
	Created  []stripe.CheckoutParams
	Event    stripego.Event
	EventErr error
	GetErr   error
}

func NewPayments() *Payments {
	return &Payments{Sessions: map[string]stripe.CheckoutSession{}}
}

func (p *Payments) CreateCheckoutSession(_ context.Context, params stripe.CheckoutParams) (stripe.CheckoutSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Created = append(p.Created, params)
	s := stripe.CheckoutSession{
		ID:            "cs_test_" + params.PriceID,
		URL:           "https://checkout.test/" + params.PriceID,
		PaymentStatus: stripe.PaymentUnpaid,
		Metadata:      params.Metadata,
	}
	p.Sessions[s.ID] = s
	return s, nil
}

func (p *Payments) GetCheckoutSession(_ context.Context, id string) (stripe.CheckoutSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.GetErr != nil {
		return stripe.CheckoutSession{}, p.GetErr
	}
	s, ok := p.Sessions[id]
	if !ok {
		return stripe.CheckoutSession{}, errors.New("no such checkout session")
	}
	return s, nil
}

func (p *Payments) ListOneTimePrices(context.Context, string) ([]stripe.Price, error) {
	return p.Prices, nil
}

func (p *Payments) ConstructEvent([]byte, string) (stripego.Event, error) {
	return p.Event, p.EventErr
}

// Published is one captured message.
type Published struct {
	RoutingKey string
	Priority   uint8
	Body       interface{}
}

// Publisher captures published events.
type Publisher struct {
	mu       sync.Mutex
	Err      error
	Messages []Published
}

func (p *Publisher) Publish(_ context.Context, routingKey string, priority uint8, body interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Messages = append(p.Messages, Published{RoutingKey: routingKey, Priority: priority, Body: body})
	return nil
}

func (p *Publisher) Close() {}
