package client

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
)

// nameParser turns formatted Moodle strings into plain text.
// Category and course names pass through Moodle's format_string, so they may carry
// entities and multilang spans like <span lang="en" class="multilang">Faculty</span>.
type nameParser struct {
	language string
}

func newNameParser(language string) *nameParser {
	return &nameParser{
		language: language,
	}
}

func (p *nameParser) PlainText(name string) string {
	if !strings.ContainsAny(name, "<&") {
		return name
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(name))
	if err != nil {
		log.Debugf("Keeping unparsable name %q: %v", name, err)
		return name
	}

	multilang := doc.Find("span.multilang")
	if multilang.Length() > 0 {
		chosen := multilang.First()
		if p.language != "" {
			if match := multilang.Filter("[lang='" + p.language + "']"); match.Length() > 0 {
				chosen = match.First()
			}
		}
		// Drop every other translation, keep surrounding text
		multilang.Each(func(i int, s *goquery.Selection) {
			if !s.IsSelection(chosen) {
				s.Remove()
			}
		})
	}

	return strings.TrimSpace(doc.Text())
}
