package share

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/nhle/followup/internal/model"
)

// linkPattern matches http(s) URLs up to the next whitespace or markup
// delimiter.
var linkPattern = regexp.MustCompile(`https?://[^\s<>"'()\[\]]+`)

// trailingPunct is stripped from the end of a matched URL so sentence
// punctuation does not become part of the link.
const trailingPunct = ".,;:!?"

// ExtractLinks returns the URLs found in text, deduplicated and in the
// order of first occurrence.
func ExtractLinks(text string) []string {
	matches := linkPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var result []string
	for _, m := range matches {
		m = strings.TrimRight(m, trailingPunct)
		if seen[m] {
			continue
		}
		seen[m] = true
		result = append(result, m)
	}
	return result
}

// linkAttachments turns URLs into link attachments labelled by host.
func linkAttachments(links []string) []model.Attachment {
	out := make([]model.Attachment, 0, len(links))
	for _, l := range links {
		out = append(out, model.Attachment{
			Type:  model.MediaLink,
			Label: linkLabel(l),
			Href:  l,
		})
	}
	return out
}

func linkLabel(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return strings.TrimPrefix(u.Host, "www.")
}
