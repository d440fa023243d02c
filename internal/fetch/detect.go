package fetch

import (
	"net/url"
	"strings"

	"github.com/starford/reinforcer/internal/models"
)

// DetectSourceType classifies a URL as a YouTube video or a web article.
func DetectSourceType(raw string) models.SourceType {
	if strings.Contains(raw, "youtube.com/watch") || strings.Contains(raw, "youtu.be/") {
		return models.SourceYouTubeVideo
	}
	return models.SourceWebArticle
}

// VideoID extracts the video identifier from youtube.com/watch?v= and
// youtu.be/ links.
func VideoID(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	switch strings.ToLower(u.Hostname()) {
	case "youtube.com", "www.youtube.com", "m.youtube.com":
		if v := u.Query().Get("v"); v != "" {
			return v, true
		}
	case "youtu.be":
		if id := strings.Trim(u.Path, "/"); id != "" {
			return id, true
		}
	}
	return "", false
}
