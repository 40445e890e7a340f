package fields

import (
	"regexp"
	"strings"
)

// Link is a markdown image or link found in a message.
type Link struct {
	Text  string // alt text or link text
	URL   string
	Image bool // ![alt](url) rather than [text](url)
	Start int
	End   int
}

var (
	imageRe = regexp.MustCompile(`!\[([^\]\n]*)\]\(\s*([^)\s]+)(?:\s+"[^"\n]*")?\s*\)`)
	linkRe  = regexp.MustCompile(`\[([^\]\n]*)\]\(\s*([^)\s]+)(?:\s+"[^"\n]*")?\s*\)`)
)

// imageExtensions are the URL suffixes that turn a plain link into an image.
var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg", ".avif", ".bmp"}

// IsImageURL reports whether u ends in a known image extension, ignoring any
// query string or fragment.
func IsImageURL(u string) bool {
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	u = strings.ToLower(u)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(u, ext) {
			return true
		}
	}
	return false
}

// Links returns every markdown image and link in text, in source order.
func Links(text string) []Link {
	var links []Link
	for _, m := range linkRe.FindAllStringSubmatchIndex(text, -1) {
		l := Link{
			Text:  text[m[2]:m[3]],
			URL:   text[m[4]:m[5]],
			Start: m[0],
			End:   m[1],
		}
		if l.Start > 0 && text[l.Start-1] == '!' {
			l.Image = true
			l.Start--
		}
		links = append(links, l)
	}
	return links
}

// FindImage returns the first ![alt](url) in text.
func FindImage(text string) (Link, bool) {
	m := imageRe.FindStringSubmatchIndex(text)
	if m == nil {
		return Link{}, false
	}
	return Link{
		Text:  text[m[2]:m[3]],
		URL:   text[m[4]:m[5]],
		Image: true,
		Start: m[0],
		End:   m[1],
	}, true
}

// FindImageLink returns the first plain [text](url) whose URL names an image file.
func FindImageLink(text string) (Link, bool) {
	for _, l := range Links(text) {
		if !l.Image && IsImageURL(l.URL) {
			return l, true
		}
	}
	return Link{}, false
}

// FindPicture returns the first markdown image, or failing that the first
// image-extension link.
func FindPicture(text string) (Link, bool) {
	if l, ok := FindImage(text); ok {
		return l, true
	}
	return FindImageLink(text)
}

// HasPicture reports whether FindPicture would succeed.
func HasPicture(text string) bool {
	_, ok := FindPicture(text)
	return ok
}

// LastLink returns the last image or link in text.
func LastLink(text string) (Link, bool) {
	links := Links(text)
	if len(links) == 0 {
		return Link{}, false
	}
	return links[len(links)-1], true
}

// FirstLink returns the first image or link in text.
func FirstLink(text string) (Link, bool) {
	links := Links(text)
	if len(links) == 0 {
		return Link{}, false
	}
	return links[0], true
}
