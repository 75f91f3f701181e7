// Package gallery models the product page image switcher: a main image and a
// strip of thumbnails, the first of which is the main image itself.
package gallery

import (
	"io"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	MainImageSelector = ".main-image"
	ThumbsSelector    = ".collection-list-thumb"
	ThumbSelector     = ".thumb"
	ActiveClass       = "active-thumb"
)

var FadeDuration = 300 * time.Millisecond

type Thumb struct {
	Index  int    `json:"index"`
	Src    string `json:"src"`
	Active bool   `json:"active"`
}

// Gallery is the switcher state for one product page.
type Gallery struct {
	MainSrc string  `json:"mainSrc"`
	Srcset  string  `json:"srcset,omitempty"`
	Thumbs  []Thumb `json:"thumbs"`
	active  int
}

// Swap describes a main image change. The client fades out, sets src and
// srcset after Fade and fades back in.
type Swap struct {
	Changed bool          `json:"changed"`
	Src     string        `json:"src,omitempty"`
	Srcset  string        `json:"srcset,omitempty"`
	Active  int           `json:"active"`
	Fade    time.Duration `json:"fade"`
}

// FromSelection reads the gallery below root. It returns nil when the page
// has no main image or no thumbnails.
func FromSelection(root *goquery.Selection) *Gallery {
	main := root.Find(MainImageSelector).First()
	if main.Length() == 0 {
		return nil
	}
	thumbs := root.Find(ThumbsSelector).First().Find(ThumbSelector)
	if thumbs.Length() == 0 {
		return nil
	}
	mainSrc, _ := main.Attr("src")
	srcset, _ := main.Attr("srcset")
	g := &Gallery{
		MainSrc: mainSrc,
		Srcset:  srcset,
		Thumbs:  []Thumb{{Index: 0, Src: mainSrc, Active: true}},
	}
	thumbs.Each(func(i int, s *goquery.Selection) {
		g.Thumbs = append(g.Thumbs, Thumb{Index: len(g.Thumbs), Src: thumbSrc(s)})
	})
	return g
}

func Parse(r io.Reader) (*Gallery, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	return FromSelection(doc.Selection), nil
}

// thumbSrc prefers data-src, lazy loaded thumbs keep the real url there.
func thumbSrc(s *goquery.Selection) string {
	if src, ok := s.Attr("data-src"); ok && src != "" {
		return src
	}
	src, _ := s.Attr("src")
	return src
}

func (g *Gallery) Active() int {
	return g.active
}

// Select activates thumb index. Selecting the active thumb, an unknown index
// or a thumb showing the current main image changes nothing.
func (g *Gallery) Select(index int) Swap {
	noop := Swap{Active: g.active}
	if index < 0 || index >= len(g.Thumbs) || index == g.active {
		return noop
	}
	src := g.Thumbs[index].Src
	if src == g.MainSrc {
		return noop
	}
	g.Thumbs[g.active].Active = false
	g.Thumbs[index].Active = true
	g.active = index
	g.MainSrc = src
	g.Srcset = src
	return Swap{
		Changed: true,
		Src:     src,
		Srcset:  src,
		Active:  index,
		Fade:    FadeDuration,
	}
}

// Clone copies the gallery so each visitor gets their own active thumb.
func (g *Gallery) Clone() *Gallery {
	c := *g
	c.Thumbs = append([]Thumb(nil), g.Thumbs...)
	return &c
}
