package videos

import "time"

// Video is the normalized representation of a video across providers.
// A video is identified by (GatewayHandle, ID); the ID alone is only unique
// within its provider. Instances are treated as immutable once parsed.
type Video struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Duration      time.Duration  `json:"duration"`
	PublishedAt   time.Time      `json:"publishedAt"`
	URL           string         `json:"url"`
	GatewayHandle string         `json:"gatewayHandle"`
	Private       bool           `json:"private"`
	Author        VideoAuthor    `json:"author"`
	Thumbnail     VideoThumbnail `json:"thumbnail"`
	Size          *VideoSize     `json:"size,omitempty"`
	Statistic     VideoStatistic `json:"statistic"`
	Raw           map[string]any `json:"raw,omitempty"`
}

// VideoAuthor identifies the account that published a video.
type VideoAuthor struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// VideoThumbnail carries provider-hosted thumbnail source URLs. Binary
// storage and resizing belong to an external collaborator.
type VideoThumbnail struct {
	SmallestSourceURL string `json:"smallestSourceUrl,omitempty"`
	LargestSourceURL  string `json:"largestSourceUrl,omitempty"`
}

// VideoSize is the intrinsic pixel size of a video, when the provider
// reports one.
type VideoSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// VideoStatistic aggregates provider play counters.
type VideoStatistic struct {
	PlayCount int `json:"playCount"`
}

// Account is the OAuth resource owner behind a gateway connection.
type Account struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// VideoPage is one page of a listing. MoreToken is an opaque continuation
// value whose meaning is provider-specific (an opaque cursor for YouTube, a
// page number for Vimeo). More is only true when the provider reports a next
// page and this page is non-empty.
type VideoPage struct {
	Videos    []Video `json:"videos"`
	MoreToken string  `json:"moreToken,omitempty"`
	More      bool    `json:"more"`
}

// ListOptions parameterizes a listing call.
type ListOptions struct {
	// ID selects the playlist, album, channel or folder for collection-bound
	// methods.
	ID string
	// Query is the search term for the search method.
	Query string
	// MoreToken continues a previous page; empty requests the first page.
	MoreToken string
	// PerPage overrides the gateway's configured page size when positive.
	PerPage int
}
