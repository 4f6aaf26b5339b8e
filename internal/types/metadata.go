package types

// Author describes the channel that uploaded a video.
type Author struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	URL  string `json:"channelUrl,omitempty"`
}

// Media holds the optional category block shown under some videos
// (game, song, category).
type Media struct {
	Category    string `json:"category,omitempty"`
	CategoryURL string `json:"categoryUrl,omitempty"`
	Genre       string `json:"genre,omitempty"`
}

// RelatedVideo is a reference to another video linked from the watch page.
type RelatedVideo struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
}

// Extras are the descriptive fields scraped from watch-page markup.
// Every field is optional.
type Extras struct {
	Author        Author         `json:"author"`
	Published     string         `json:"published,omitempty"`
	Description   string         `json:"description,omitempty"`
	Media         Media          `json:"media"`
	RelatedVideos []RelatedVideo `json:"relatedVideos,omitempty"`
	Likes         *int64         `json:"likes,omitempty"`
	Dislikes      *int64         `json:"dislikes,omitempty"`
}
