// Package videohost talks to the Mux Video API: direct uploads, asset lookup and deletion.
package videohost

import (
	"context"
	"errors"
	"time"

	"highlight-api/internal/infra/metrics"

	muxgo "github.com/muxinc/mux-go/v5"
)

var ErrNotFound = errors.New("video host resource not found")

// Upload statuses reported by the host.
const (
	UploadWaiting      = "waiting"
	UploadAssetCreated = "asset_created"
	UploadErrored      = "errored"
	UploadCancelled    = "cancelled"
	UploadTimedOut     = "timed_out"
)

// Asset statuses reported by the host.
const (
	AssetPreparing = "preparing"
	AssetReady     = "ready"
	AssetErrored   = "errored"
)

type Upload struct {
	ID      string
	URL     string
	Status  string
	AssetID string
}

type PlaybackID struct {
	ID     string
	Policy string
}

type Asset struct {
	ID          string
	Status      string
	Duration    float64
	PlaybackIDs []PlaybackID
}

// FirstPlaybackID returns the first public playback id, if any.
func (a Asset) FirstPlaybackID() string {
	for _, p := range a.PlaybackIDs {
		if p.Policy == "" || p.Policy == "public" {
			return p.ID
		}
	}
	return ""
}

// Host is the subset of the video host the API depends on.
type Host interface {
	CreateUpload(ctx context.Context, corsOrigin, passthrough string) (Upload, error)
	GetUpload(ctx context.Context, uploadID string) (Upload, error)
	CancelUpload(ctx context.Context, uploadID string) error
	GetAsset(ctx context.Context, assetID string) (Asset, error)
	DeleteAsset(ctx context.Context, assetID string) error
}

// Client is the Host backed by the Mux SDK.
type Client struct {
	api *muxgo.APIClient
}

func NewClient(tokenID, tokenSecret string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	cfg := muxgo.NewConfiguration(
		muxgo.WithBasicAuth(tokenID, tokenSecret),
		muxgo.WithTimeout(timeout),
	)
	return &Client{api: muxgo.NewAPIClient(cfg)}
}

// CreateUpload opens a direct upload the browser can PUT the file to.
// passthrough is echoed back on the asset and carries our video id.
func (c *Client) CreateUpload(ctx context.Context, corsOrigin, passthrough string) (Upload, error) {
	if corsOrigin == "" {
		corsOrigin = "*"
	}
	req := muxgo.CreateUploadRequest{
		CorsOrigin: corsOrigin,
		NewAssetSettings: muxgo.CreateAssetRequest{
			PlaybackPolicy: []muxgo.PlaybackPolicy{muxgo.PUBLIC},
			Passthrough:    passthrough,
		},
	}
	resp, err := c.api.DirectUploadsApi.CreateDirectUpload(req, muxgo.WithContext(ctx))
	metrics.ObserveExternal("mux", "upload.create", err)
	if err != nil {
		return Upload{}, hostErr(err)
	}
	return toUpload(resp.Data), nil
}

func (c *Client) GetUpload(ctx context.Context, uploadID string) (Upload, error) {
	resp, err := c.api.DirectUploadsApi.GetDirectUpload(uploadID, muxgo.WithContext(ctx))
	metrics.ObserveExternal("mux", "upload.get", err)
	if err != nil {
		return Upload{}, hostErr(err)
	}
	return toUpload(resp.Data), nil
}

func (c *Client) CancelUpload(ctx context.Context, uploadID string) error {
	_, err := c.api.DirectUploadsApi.CancelDirectUpload(uploadID, muxgo.WithContext(ctx))
	metrics.ObserveExternal("mux", "upload.cancel", err)
	return hostErr(err)
}

func (c *Client) GetAsset(ctx context.Context, assetID string) (Asset, error) {
	resp, err := c.api.AssetsApi.GetAsset(assetID, muxgo.WithContext(ctx))
	metrics.ObserveExternal("mux", "asset.get", err)
	if err != nil {
		return Asset{}, hostErr(err)
	}
	return toAsset(resp.Data), nil
}

// DeleteAsset removes an asset. A missing asset is not an error.
func (c *Client) DeleteAsset(ctx context.Context, assetID string) error {
	err := hostErr(c.api.AssetsApi.DeleteAsset(assetID, muxgo.WithContext(ctx)))
	if errors.Is(err, ErrNotFound) {
		err = nil
	}
	metrics.ObserveExternal("mux", "asset.delete", err)
	return err
}

// hostErr folds the SDK's 404 into ErrNotFound.
func hostErr(err error) error {
	var nf muxgo.NotFoundError
	if errors.As(err, &nf) {
		return ErrNotFound
	}
	return err
}

func toUpload(u muxgo.Upload) Upload {
	return Upload{ID: u.Id, URL: u.Url, Status: u.Status, AssetID: u.AssetId}
}

func toAsset(a muxgo.Asset) Asset {
	out := Asset{ID: a.Id, Status: a.Status, Duration: a.Duration}
	for _, p := range a.PlaybackIds {
		out.PlaybackIDs = append(out.PlaybackIDs, PlaybackID{ID: p.Id, Policy: string(p.Policy)})
	}
	return out
}

// PlaybackURL is the HLS stream for a playback id.
func PlaybackURL(playbackID string) string {
	if playbackID == "" {
		return ""
	}
	return "https://stream.mux.com/" + playbackID + ".m3u8"
}

// ThumbnailURL is the poster frame for a playback id.
func ThumbnailURL(playbackID string) string {
	if playbackID == "" {
		return ""
	}
	return "https://image.mux.com/" + playbackID + "/thumbnail.jpg"
}
