// Package extras pulls descriptive fields out of watch-page markup.
package extras

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/famomatic/ytstream/internal/types"
)

// Extractor reads ancillary fields from raw page markup. Missing fields
// are left empty; extraction never fails.
type Extractor interface {
	Extract(body, videoID string) types.Extras
}

// HTMLExtractor is the default Extractor.
type HTMLExtractor struct{}

var (
	watchHrefPattern = regexp.MustCompile(`^/watch\?v=([A-Za-z0-9_-]{11})`)
	likeCountPattern = regexp.MustCompile(`"likeCount"\s*:\s*"?(\d+)`)
	dislikePattern   = regexp.MustCompile(`"dislikeCount"\s*:\s*"?(\d+)`)
	likeLabelPattern = regexp.MustCompile(`(?i)like this video along with ([\d,.]+) other`)
	dislikeLabel     = regexp.MustCompile(`(?i)dislike this video along with ([\d,.]+) other`)
	channelIDPattern = regexp.MustCompile(`/channel/([A-Za-z0-9_-]+)`)
)

func (HTMLExtractor) Extract(body, videoID string) types.Extras {
	var out types.Extras
	doc, err := html.Parse(strings.NewReader(body))
	if err == nil {
		w := walker{videoID: videoID, seen: map[string]bool{}}
		w.walk(doc, &out, false)
	}
	out.Likes = firstCount(body, likeCountPattern, likeLabelPattern)
	out.Dislikes = firstCount(body, dislikePattern, dislikeLabel)
	return out
}

type walker struct {
	videoID string
	seen    map[string]bool
}

func (w *walker) walk(n *html.Node, out *types.Extras, inAuthor bool) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "meta":
			w.meta(n, out, inAuthor)
		case "link":
			if inAuthor {
				switch attr(n, "itemprop") {
				case "name":
					out.Author.Name = attr(n, "content")
				case "url":
					out.Author.URL = attr(n, "href")
					if m := channelIDPattern.FindStringSubmatch(out.Author.URL); m != nil {
						out.Author.ID = m[1]
					}
				}
			}
		case "a":
			w.anchor(n, out)
		}
		if attr(n, "itemprop") == "author" {
			inAuthor = true
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c, out, inAuthor)
	}
}

func (w *walker) meta(n *html.Node, out *types.Extras, inAuthor bool) {
	content := attr(n, "content")
	switch {
	case attr(n, "itemprop") == "datePublished":
		out.Published = content
	case attr(n, "itemprop") == "genre":
		out.Media.Genre = content
	case attr(n, "itemprop") == "channelId" && out.Author.ID == "":
		out.Author.ID = content
	case attr(n, "name") == "description" && out.Description == "":
		out.Description = content
	case inAuthor && attr(n, "itemprop") == "name":
		out.Author.Name = content
	}
}

func (w *walker) anchor(n *html.Node, out *types.Extras) {
	href := attr(n, "href")
	if strings.HasPrefix(href, "/channel/") && strings.Contains(attr(n, "class"), "yt-uix-sessionlink") && out.Media.CategoryURL == "" && strings.Contains(parentClass(n), "watch-info-tag-list") {
		out.Media.Category = strings.TrimSpace(text(n))
		out.Media.CategoryURL = "https://www.youtube.com" + href
		return
	}
	m := watchHrefPattern.FindStringSubmatch(href)
	if m == nil || m[1] == w.videoID || w.seen[m[1]] {
		return
	}
	w.seen[m[1]] = true
	title := attr(n, "title")
	if title == "" {
		title = strings.TrimSpace(text(n))
	}
	out.RelatedVideos = append(out.RelatedVideos, types.RelatedVideo{ID: m[1], Title: title})
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func parentClass(n *html.Node) string {
	for p := n.Parent; p != nil; p = p.Parent {
		if c := attr(p, "class"); c != "" {
			return c
		}
	}
	return ""
}

func text(n *html.Node) string {
	var b strings.Builder
	var rec func(*html.Node)
	rec = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			rec(c)
		}
	}
	rec(n)
	return b.String()
}

func firstCount(body string, patterns ...*regexp.Regexp) *int64 {
	for _, p := range patterns {
		m := p.FindStringSubmatch(body)
		if m == nil {
			continue
		}
		digits := strings.NewReplacer(",", "", ".", "").Replace(m[1])
		if n, err := strconv.ParseInt(digits, 10, 64); err == nil {
			return &n
		}
	}
	return nil
}
