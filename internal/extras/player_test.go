package extras

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/famomatic/ytstream/internal/innertube"
	"github.com/famomatic/ytstream/internal/types"
)

func playerResponse() *innertube.PlayerResponse {
	return &innertube.PlayerResponse{
		VideoDetails: innertube.VideoDetails{
			Author:           "Details Author",
			ChannelID:        "UCdetails",
			ShortDescription: "details description",
		},
		Microformat: innertube.Microformat{Renderer: innertube.MicroformatRenderer{
			Description:      innertube.Text{SimpleText: "microformat description"},
			OwnerProfileURL:  "http://www.youtube.com/channel/UC38IQsAvIsxxjztdMZQtwHA",
			OwnerChannelName: "Rick Astley",
			ChannelID:        "UC38IQsAvIsxxjztdMZQtwHA",
			Category:         "Music",
			PublishDate:      "2009-10-24",
		}},
	}
}

func TestFillFromPlayerFillsMissingFields(t *testing.T) {
	var got types.Extras
	FillFromPlayer(&got, playerResponse())

	assert.Equal(t, "2009-10-24", got.Published)
	assert.Equal(t, "microformat description", got.Description)
	assert.Equal(t, "Music", got.Media.Category)
	assert.Equal(t, "Rick Astley", got.Author.Name)
	assert.Equal(t, "UC38IQsAvIsxxjztdMZQtwHA", got.Author.ID)
	assert.Equal(t, "https://www.youtube.com/channel/UC38IQsAvIsxxjztdMZQtwHA", got.Author.URL)
}

func TestFillFromPlayerKeepsScrapedFields(t *testing.T) {
	got := HTMLExtractor{}.Extract(watchPage, "dQw4w9WgXcQ")
	pr := playerResponse()
	pr.Microformat.Renderer.Category = "Entertainment"
	pr.Microformat.Renderer.PublishDate = "2020-01-01"
	FillFromPlayer(&got, pr)

	assert.Equal(t, "2009-10-24", got.Published)
	assert.Equal(t, "Music", got.Media.Category)
	assert.Equal(t, "A short clip.", got.Description)
}

func TestFillFromPlayerFallsBackToVideoDetails(t *testing.T) {
	var got types.Extras
	FillFromPlayer(&got, &innertube.PlayerResponse{VideoDetails: innertube.VideoDetails{
		Author:           "Details Author",
		ChannelID:        "UCdetails",
		ShortDescription: "details description",
	}})

	assert.Equal(t, "Details Author", got.Author.Name)
	assert.Equal(t, "UCdetails", got.Author.ID)
	assert.Equal(t, "https://www.youtube.com/channel/UCdetails", got.Author.URL)
	assert.Equal(t, "details description", got.Description)

	FillFromPlayer(nil, playerResponse())
	FillFromPlayer(&got, nil)
}
