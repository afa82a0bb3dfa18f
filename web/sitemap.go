package web

import (
	"encoding/xml"
	"fmt"
	"net/http"

	"github.com/golang/glog"

	"badc0de.net/pkg/go-tibia-things/dat"
	"badc0de.net/pkg/go-tibia-things/things"
)

// sitemapMaxURLs is the most entries a single sitemap may hold.
const sitemapMaxURLs = 50000

type SitemapChangeFreq int

const (
	SitemapChangeFreqUnspecified SitemapChangeFreq = iota
	SitemapChangeFreqAlways
	SitemapChangeFreqHourly
	SitemapChangeFreqDaily
	SitemapChangeFreqWeekly
	SitemapChangeFreqMonthly
	SitemapChangeFreqYearly
	SitemapChangeFreqNever
)

func (s SitemapChangeFreq) String() string {
	switch s {
	case SitemapChangeFreqUnspecified:
		return ""
	case SitemapChangeFreqAlways:
		return "always"
	case SitemapChangeFreqHourly:
		return "hourly"
	case SitemapChangeFreqDaily:
		return "daily"
	case SitemapChangeFreqWeekly:
		return "weekly"
	case SitemapChangeFreqMonthly:
		return "monthly"
	case SitemapChangeFreqYearly:
		return "yearly"
	case SitemapChangeFreqNever:
		return "never"
	}
	return "bad value"
}

func (s SitemapChangeFreq) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type SitemapURLImage struct {
	Loc string `xml:"image:loc"`
}

type SitemapURL struct {
	XMLName    xml.Name          `xml:"url"`
	Loc        string            `xml:"loc"`
	LastMod    string            `xml:"lastmod,omitempty"`
	ChangeFreq SitemapChangeFreq `xml:"changefreq,omitempty"`
	Priority   float32           `xml:"priority,omitempty"` // 0.0-1.0, default if unspecified is 0.5

	Image []SitemapURLImage `xml:"image:image,omitempty"`
}

type SitemapURLSet struct {
	XMLName    xml.Name     `xml:"http://www.sitemaps.org/schemas/sitemap/0.9 urlset"`
	XMLNSImage string       `xml:"xmlns:image,attr"`
	URL        []SitemapURL `xml:"url,omitempty"`
}

func (e *SitemapURLSet) Write(w http.ResponseWriter, r *http.Request) {
	e.XMLNSImage = "http://www.google.com/schemas/sitemap-image/1.1"

	w.Header().Set("Content-Type", "application/xml")

	fmt.Fprintf(w, "%s", xml.Header)
	enc := xml.NewEncoder(w)
	enc.Indent("", " ")
	if err := enc.Encode(e); err != nil {
		glog.Errorf("error encoding sitemap: %v", err)
	}
}

// sitemapHandler lists the descriptor of every thing, along with its layout
// image.
func (h *Handler) sitemapHandler(w http.ResponseWriter, r *http.Request) {
	ds := h.th.Dataset()
	if ds == nil {
		http.Error(w, things.ErrNoDataset.Error(), http.StatusServiceUnavailable)
		return
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	base := scheme + "://" + r.Host
	lastMod := h.loaded.UTC().Format("2006-01-02")

	set := &SitemapURLSet{}
	for c := dat.CATEGORY_ITEM; c < dat.CATEGORY_COUNT; c++ {
		ds.Things(c, func(t *dat.Thing) bool {
			if len(set.URL) >= sitemapMaxURLs {
				return false
			}
			loc := fmt.Sprintf("%s/things/%s/%d", base, c, t.ID)
			set.URL = append(set.URL, SitemapURL{
				Loc:        loc,
				LastMod:    lastMod,
				ChangeFreq: SitemapChangeFreqMonthly,
				Image:      []SitemapURLImage{{Loc: loc + "/layout.png"}},
			})
			return true
		})
	}
	set.Write(w, r)
}
