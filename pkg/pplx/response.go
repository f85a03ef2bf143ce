package pplx

import (
	"strings"

	"github.com/tidwall/gjson"
)

// parseResponse pulls the Perplexity extras out of the raw body. Each list
// stays nil unless present and non-empty.
func parseResponse(content, raw string) *Response {
	return &Response{
		Content:          content,
		Citations:        parseCitations(gjson.Get(raw, "citations")),
		RelatedQuestions: parseStrings(gjson.Get(raw, "related_questions")),
		Images:           parseImages(gjson.Get(raw, "images")),
	}
}

// parseCitations accepts both {title,url} objects and bare URL strings.
func parseCitations(list gjson.Result) []Citation {
	var out []Citation
	list.ForEach(func(_, v gjson.Result) bool {
		switch {
		case v.IsObject():
			c := Citation{
				Title: strings.TrimSpace(v.Get("title").String()),
				URL:   strings.TrimSpace(v.Get("url").String()),
			}
			if c.Title != "" || c.URL != "" {
				out = append(out, c)
			}
		case v.Type == gjson.String:
			if url := strings.TrimSpace(v.String()); url != "" {
				out = append(out, Citation{URL: url})
			}
		}
		return true
	})
	return out
}

func parseStrings(list gjson.Result) []string {
	var out []string
	list.ForEach(func(_, v gjson.Result) bool {
		if v.Type == gjson.String && strings.TrimSpace(v.String()) != "" {
			out = append(out, v.String())
		}
		return true
	})
	return out
}

func parseImages(list gjson.Result) []Image {
	var out []Image
	list.ForEach(func(_, v gjson.Result) bool {
		switch {
		case v.IsObject():
			img := Image{
				URL:       strings.TrimSpace(v.Get("image_url").String()),
				OriginURL: strings.TrimSpace(v.Get("origin_url").String()),
			}
			if img.URL != "" {
				out = append(out, img)
			}
		case v.Type == gjson.String:
			if url := strings.TrimSpace(v.String()); url != "" {
				out = append(out, Image{URL: url})
			}
		}
		return true
	})
	return out
}
