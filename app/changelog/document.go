package changelog

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

var divWithID = cascadia.MustCompile("div[id]")

// Locate parses the page and returns the first div whose id is containerID.
func Locate(page string, containerID string) (*goquery.Selection, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, NewError(KindStructure, err, "Could not parse the changelog document")
	}

	container := doc.FindMatcher(divWithID).FilterFunction(func(_ int, s *goquery.Selection) bool {
		id, _ := s.Attr("id")
		return id == containerID
	}).First()

	if container.Length() == 0 || container.Get(0).Type != html.ElementNode {
		return nil, NewError(KindStructure, nil,
			"Could not find the main body of the document (i.e. element with id '%s')", containerID)
	}

	return container, nil
}
