package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/changelog-relay/internal/changelog"
)

// Parse extracts updates from changelog HTML.
//
// Every h2 starts a section that runs until the next h2. Sections that yield no
// content are dropped. Parse never fails; malformed markup is handled by the
// HTML parser's error recovery.
func Parse(rawHTML string) []*changelog.Update {
	updates := make([]*changelog.Update, 0)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return updates
	}

	doc.Find("h2").Each(func(_ int, heading *goquery.Selection) {
		date := strings.TrimSpace(heading.Text())
		if date == "" {
			return
		}

		content := parseSection(heading.NextUntil("h2"))
		if content == "" {
			return
		}

		updates = append(updates, changelog.NewUpdate(date, content))
	})

	return updates
}

// parseSection flattens the top-level list items of a section body. An item
// may sit directly between headings as well as inside a list.
func parseSection(body *goquery.Selection) string {
	var content strings.Builder

	body.Each(func(_ int, node *goquery.Selection) {
		if goquery.NodeName(node) == "li" {
			content.WriteString(parseItem(node))
			return
		}

		node.Find("li").Each(func(_ int, item *goquery.Selection) {
			// Nested items are handled by their parent
			if item.ParentsUntilSelection(node).Filter("li").Length() > 0 {
				return
			}
			content.WriteString(parseItem(item))
		})
	})

	return content.String()
}

// parseItem renders one list item as an optional title line followed by either
// its detail text or its nested items as bullets
func parseItem(item *goquery.Selection) string {
	var out strings.Builder

	rest := item.Clone()
	if lead := leadingBold(rest); lead != nil {
		if title := cleanText(lead.Text()); title != "" {
			out.WriteString(title + "\n")
		}
		lead.Remove()
	}
	rest.Find("ul, ol").Remove()

	if detail := cleanText(rest.Text()); detail != "" {
		out.WriteString("- " + detail + "\n")
		return out.String()
	}

	item.Find("li").Each(func(_ int, sub *goquery.Selection) {
		if !sub.ParentsFiltered("li").First().IsSelection(item) {
			return
		}
		if text := cleanText(sub.Text()); text != "" {
			out.WriteString("- " + text + "\n")
		}
	})

	return out.String()
}

// leadingBold returns the strong/b element that opens the item, ignoring
// surrounding whitespace, or nil if the item starts with anything else
func leadingBold(item *goquery.Selection) *goquery.Selection {
	var lead *goquery.Selection

	item.Contents().EachWithBreak(func(_ int, node *goquery.Selection) bool {
		name := goquery.NodeName(node)
		if name == "#text" && strings.TrimSpace(node.Text()) == "" {
			return true
		}
		if name == "strong" || name == "b" {
			lead = node
		}
		return false
	})

	return lead
}

// cleanText drops stray ';' left over from entity decoding and collapses
// whitespace. Entities themselves are already decoded by the HTML parser.
func cleanText(s string) string {
	s = strings.ReplaceAll(s, ";", "")
	return strings.Join(strings.Fields(s), " ")
}
