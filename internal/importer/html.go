package importer

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/quirbit/qb/internal/model"
	"golang.org/x/net/html"
)

// ParseHTMLLinks parses Netscape bookmark HTML into links owned by the
// given owner. Folder hierarchy is flattened: the top-level folder name
// becomes the link's category, root-level links fall back to the default
// fallback category.
func ParseHTMLLinks(r io.Reader, ownerID string) ([]model.Link, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var links []model.Link

	// Track current folder name stack for hierarchy
	var folderStack []string
	var pendingFolder string // folder waiting to be pushed on next DL

	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "h3":
				// Folder definition - get name from text content
				if name := getTextContent(n); name != "" {
					// Mark as pending - pushed when we see the next DL
					pendingFolder = name
				}
				return // Don't recurse into H3

			case "a":
				// Bookmark definition
				href := getAttr(n, "href")
				if href == "" {
					// Skip bookmarks without URL
					return
				}

				title := getTextContent(n)
				if title == "" {
					title = href // fallback to URL as title
				}

				// Top-level folder name becomes the category
				category := model.FallbackCategory
				if len(folderStack) > 0 {
					category = folderStack[0]
				}

				// Parse ADD_DATE timestamp
				createdAt := time.Now()
				if addDate := getAttr(n, "add_date"); addDate != "" {
					if ts, err := strconv.ParseInt(addDate, 10, 64); err == nil {
						createdAt = time.Unix(ts, 0)
					}
				}

				links = append(links, model.Link{
					ID:        model.GenerateUUID(),
					OwnerID:   ownerID,
					Title:     title,
					URL:       model.NormalizeURL(href),
					Category:  category,
					CreatedAt: createdAt,
				})
				return // Don't recurse into A

			case "dl":
				// Definition list - marks folder contents
				// If we have a pending folder, push it now
				pushedFolder := false
				if pendingFolder != "" {
					folderStack = append(folderStack, pendingFolder)
					pendingFolder = ""
					pushedFolder = true
				}

				// Process children
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					parse(c)
				}

				// Pop if we pushed
				if pushedFolder && len(folderStack) > 0 {
					folderStack = folderStack[:len(folderStack)-1]
				}
				return // Don't recurse further, we handled children
			}
		}

		// Recurse into children
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}

	parse(doc)
	return links, nil
}

// Categories returns the distinct category names carried by the parsed
// links, in first-seen order. Used to create missing user categories
// before inserting the links.
func Categories(links []model.Link) []string {
	seen := map[string]bool{}
	var names []string
	for _, l := range links {
		if l.Category == "" || seen[l.Category] {
			continue
		}
		seen[l.Category] = true
		names = append(names, l.Category)
	}
	return names
}

// getTextContent returns the text content of a node.
func getTextContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

// getAttr returns the value of an attribute, case-insensitive.
func getAttr(n *html.Node, key string) string {
	key = strings.ToLower(key)
	for _, attr := range n.Attr {
		if strings.ToLower(attr.Key) == key {
			return attr.Val
		}
	}
	return ""
}
