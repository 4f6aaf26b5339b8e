package extras

import (
	"strings"

	"github.com/famomatic/ytstream/internal/innertube"
	"github.com/famomatic/ytstream/internal/types"
)

const channelURLPrefix = "https://www.youtube.com/channel/"

// FillFromPlayer completes out with the metadata of the player response.
// Fields already scraped from the markup are kept.
func FillFromPlayer(out *types.Extras, pr *innertube.PlayerResponse) {
	if out == nil || pr == nil {
		return
	}
	mf := pr.Microformat.Renderer
	details := pr.VideoDetails

	if out.Published == "" {
		out.Published = mf.PublishDate
	}
	if out.Description == "" {
		out.Description = firstNonEmpty(mf.Description.SimpleText, details.ShortDescription)
	}
	if out.Media.Category == "" {
		out.Media.Category = mf.Category
	}
	if out.Author.Name == "" {
		out.Author.Name = firstNonEmpty(mf.OwnerChannelName, details.Author)
	}
	if out.Author.ID == "" {
		out.Author.ID = firstNonEmpty(mf.ChannelID, details.ChannelID)
	}
	if out.Author.URL == "" {
		switch {
		case mf.OwnerProfileURL != "":
			out.Author.URL = strings.Replace(mf.OwnerProfileURL, "http://", "https://", 1)
		case out.Author.ID != "":
			out.Author.URL = channelURLPrefix + out.Author.ID
		}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
