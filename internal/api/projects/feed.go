package projects

import (
	"time"

	"highlight-api/internal/domain/videos"
	"highlight-api/internal/infra/videohost"
)

type FeedItem struct {
	VideoID      string    `json:"videoId"`
	FileName     string    `json:"fileName"`
	Source       string    `json:"source"`
	PlaybackURL  string    `json:"playbackUrl"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	ReadyAt      time.Time `json:"readyAt"`
}

func feedItem(v videos.Video) FeedItem {
	pid := ""
	if v.PlaybackID != nil {
		pid = *v.PlaybackID
	}
	return FeedItem{
		VideoID:      v.ID,
		FileName:     v.FileName,
		Source:       v.Source,
		PlaybackURL:  videohost.PlaybackURL(pid),
		ThumbnailURL: videohost.ThumbnailURL(pid),
		ReadyAt:      v.UpdatedAt,
	}
}
