package report

import (
	"bytes"
	"log"
	"net/url"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Matches watch links inside href attributes, including ones the HTML parser
// could not attach to an anchor (e.g. a truncated file).
var hrefVideoIDPattern = regexp.MustCompile(`href=["'][^"'>]*watch\?v=([A-Za-z0-9_-]+)`)

// VideoIDSet is the set of video ids already present in a report
type VideoIDSet map[string]struct{}

func NewVideoIDSet(ids ...string) VideoIDSet {
	set := make(VideoIDSet, len(ids))
	for _, id := range ids {
		set.Add(id)
	}
	return set
}

func (s VideoIDSet) Add(id string) {
	if id != "" {
		s[id] = struct{}{}
	}
}

func (s VideoIDSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the ids in lexical order
func (s VideoIDSet) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// LoadExistingVideoIDs recovers the video ids linked from a previously
// rendered report. A missing or unreadable file yields an empty set.
func LoadExistingVideoIDs(path string) VideoIDSet {
	content, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Failed to read existing report %s, treating as empty: %v", path, err)
		}
		return NewVideoIDSet()
	}
	return ExtractVideoIDs(content)
}

// ExtractVideoIDs collects the ids of every watch link in the document
func ExtractVideoIDs(content []byte) VideoIDSet {
	ids := NewVideoIDSet()

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		log.Printf("Warning: Failed to parse existing report, falling back to pattern match: %v", err)
	} else {
		doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
			href, _ := s.Attr("href")
			ids.Add(videoIDFromHref(href))
		})
	}

	for _, m := range hrefVideoIDPattern.FindAllSubmatch(content, -1) {
		ids.Add(string(m[1]))
	}

	return ids
}

func videoIDFromHref(href string) string {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil || !strings.HasSuffix(u.Path, "watch") {
		return ""
	}
	return u.Query().Get("v")
}
