// internal/adapter/youtube/types.go

package youtube

import "shortsradar/internal/domain/trend"

// searchResponse is the subset of a search.list response the client reads
type searchResponse struct {
	Items []struct {
		ID struct {
			Kind    string `json:"kind"`
			VideoID string `json:"videoId"`
		} `json:"id"`
	} `json:"items"`
}

// videoListResponse is the subset of a videos.list response the client reads
type videoListResponse struct {
	Items []videoItem `json:"items"`
}

type videoItem struct {
	ID      string `json:"id"`
	Snippet struct {
		Title        string `json:"title"`
		ChannelID    string `json:"channelId"`
		ChannelTitle string `json:"channelTitle"`
		PublishedAt  string `json:"publishedAt"`
	} `json:"snippet"`
	ContentDetails struct {
		Duration string `json:"duration"`
	} `json:"contentDetails"`
	Statistics struct {
		ViewCount    string `json:"viewCount"`
		LikeCount    string `json:"likeCount"`
		CommentCount string `json:"commentCount"`
	} `json:"statistics"`
}

func (v videoItem) toRaw() trend.RawVideo {
	return trend.RawVideo{
		ID:           v.ID,
		Title:        v.Snippet.Title,
		ChannelID:    v.Snippet.ChannelID,
		ChannelTitle: v.Snippet.ChannelTitle,
		PublishedAt:  v.Snippet.PublishedAt,
		Duration:     v.ContentDetails.Duration,
		ViewCount:    v.Statistics.ViewCount,
		LikeCount:    v.Statistics.LikeCount,
		CommentCount: v.Statistics.CommentCount,
	}
}

// channelListResponse is the subset of a channels.list response the client reads
type channelListResponse struct {
	Items []struct {
		ID         string `json:"id"`
		Statistics struct {
			SubscriberCount string `json:"subscriberCount"`
		} `json:"statistics"`
	} `json:"items"`
}
