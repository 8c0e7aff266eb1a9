package extract

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Link is an outbound reference found in draft HTML
type Link struct {
	URL  string
	Text string
}

// Links extracts absolute http(s) links from draft HTML, in document order
func Links(htmlContent string) []Link {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil
	}

	var links []Link
	var walk func(*html.Node)

	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			href := ""
			for _, attr := range n.Attr {
				if attr.Key == "href" {
					href = strings.TrimSpace(attr.Val)
				}
			}

			if u := absoluteURL(href); u != "" {
				links = append(links, Link{
					URL:  u,
					Text: strings.Join(strings.Fields(extractVisibleText(n)), " "),
				})
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)

	return dedupeLinks(links)
}

// absoluteURL keeps only absolute http/https URLs; drafts have no base to resolve against
func absoluteURL(href string) string {
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	parsed, err := url.Parse(href)
	if err != nil || parsed.Host == "" {
		return ""
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ""
	}
	return parsed.String()
}

// dedupeLinks removes duplicate links
func dedupeLinks(links []Link) []Link {
	seen := make(map[string]bool)
	var unique []Link

	for _, l := range links {
		if !seen[l.URL] {
			seen[l.URL] = true
			unique = append(unique, l)
		}
	}

	return unique
}
