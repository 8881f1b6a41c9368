package detail

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// defaultSection receives all free text seen before the first heading.
const defaultSection = "Description"

// parseJobDetails walks the description container and attributes every piece
// of free text to a named section.
func parseJobDetails(doc *goquery.Document) map[string][]string {
	container := doc.Find(descriptionSelector).First()
	if container.Length() == 0 {
		return map[string][]string{}
	}
	return classifySections(container)
}

// classifySections walks the direct children of the description container in
// document order and routes their text:
//
//   - a <b> heading with non-empty text starts a new current section,
//     registering it empty on first sight (the heading contributes no text)
//   - <p> text, <ul> item texts, and bare text nodes append to the current
//     section if it is registered, else to a provisional buffer
//   - <br> and unknown elements are ignored
//
// The provisional buffer, holding text seen before any heading, is merged
// into "Description" at the end, after any text that section already has.
// Every extracted piece of text therefore lands in exactly one section.
func classifySections(container *goquery.Selection) map[string][]string {
	sections := map[string][]string{}
	current := defaultSection
	var provisional []string

	route := func(text string) {
		if _, ok := sections[current]; ok {
			sections[current] = append(sections[current], text)
		} else {
			provisional = append(provisional, text)
		}
	}

	container.Contents().Each(func(_ int, child *goquery.Selection) {
		switch goquery.NodeName(child) {
		case "b":
			title := strings.TrimSpace(child.Text())
			if title == "" {
				return
			}
			current = title
			if _, ok := sections[current]; !ok {
				sections[current] = []string{}
			}
		case "p":
			if text := strings.TrimSpace(child.Text()); text != "" {
				route(text)
			}
		case "ul":
			child.Find("li").Each(func(_ int, li *goquery.Selection) {
				if text := strings.TrimSpace(li.Text()); text != "" {
					route(text)
				}
			})
		case "br":
			// line breaks carry no text
		case "#text":
			if text := strings.TrimSpace(child.Text()); text != "" {
				route(text)
			}
		}
	})

	if len(provisional) > 0 {
		sections[defaultSection] = append(sections[defaultSection], provisional...)
	}
	return sections
}
