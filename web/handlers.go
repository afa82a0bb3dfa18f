// Package web serves a read-only HTTP inspector for a loaded catalog.
package web

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"image/png"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ericpauley/go-quantize/quantize"
	"github.com/golang/glog"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"badc0de.net/pkg/go-tibia-things/dat"
	"badc0de.net/pkg/go-tibia-things/things"
)

// generation is part of every ETag; bump it if the way responses are
// generated changes.
const generation = 1

const (
	defaultTile = 8
	maxTile     = 32
	lightTiles  = 3
)

type Handler struct {
	th     *things.Things
	loaded time.Time
}

// NewHandler constructs a web handler for the passed things. Responses are
// marked as last modified when the handler was created.
func NewHandler(th *things.Things) *Handler {
	return &Handler{
		th:     th,
		loaded: time.Now(),
	}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/", h.indexHandler).Methods(http.MethodGet)
	r.HandleFunc("/stats", h.statsHandler).Methods(http.MethodGet)
	r.HandleFunc("/sitemap.xml", h.sitemapHandler).Methods(http.MethodGet)
	r.HandleFunc("/things/{category}", h.listHandler).Methods(http.MethodGet)
	r.HandleFunc("/things/{category}/{id:[0-9]+}", h.thingHandler).Methods(http.MethodGet)
	r.HandleFunc("/things/{category}/{id:[0-9]+}/sprite", h.spriteHandler).Methods(http.MethodGet)
	r.HandleFunc("/things/{category}/{id:[0-9]+}/layout.png", h.layoutHandler).Methods(http.MethodGet)
	r.HandleFunc("/things/{category}/{id:[0-9]+}/layout.gif", h.layoutGIFHandler).Methods(http.MethodGet)
	r.HandleFunc("/things/{category}/{id:[0-9]+}/light.png", h.lightHandler).Methods(http.MethodGet)
}

// frameParams are the query parameters that pick a frame of a thing.
type frameParams struct {
	group          dat.FrameGroupKind
	w, h, layer    int
	x, y, z, phase int
	tile           int
}

func parseFrameParams(q url.Values) (frameParams, error) {
	p := frameParams{tile: defaultTile}
	var ok bool
	if p.group, ok = dat.ParseFrameGroupKind(q.Get("group")); !ok {
		return p, errors.Errorf("unknown frame group %q", q.Get("group"))
	}
	for name, dst := range map[string]*int{
		"w": &p.w, "h": &p.h, "layer": &p.layer,
		"x": &p.x, "y": &p.y, "z": &p.z, "phase": &p.phase,
		"tile": &p.tile,
	} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return p, errors.Errorf("%s not a non-negative number", name)
		}
		*dst = n
	}
	if p.tile == 0 || p.tile > maxTile {
		return p, errors.Errorf("tile must be between 1 and %d", maxTile)
	}
	return p, nil
}

func (p frameParams) String() string {
	return fmt.Sprintf("%s.%d.%d.%d.%d.%d.%d.%d.%d", p.group, p.w, p.h, p.layer, p.x, p.y, p.z, p.phase, p.tile)
}

// thing resolves the category and id route variables, writing an error
// response and returning nil if they do not name a thing.
func (h *Handler) thing(w http.ResponseWriter, r *http.Request) *things.Thing {
	vars := mux.Vars(r)
	c, ok := dat.ParseCategory(vars["category"])
	if !ok {
		http.Error(w, "unknown category", http.StatusNotFound)
		return nil
	}
	id, err := strconv.Atoi(vars["id"])
	if err != nil || id > 0xFFFF {
		http.Error(w, "id not a number", http.StatusBadRequest)
		return nil
	}
	th, err := h.th.Thing(c, uint16(id))
	if err != nil {
		switch errors.Cause(err) {
		case things.ErrNotFound:
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return nil
	}
	return th
}

// notModified sets the caching headers for etag and reports whether the
// client already has the response.
func (h *Handler) notModified(w http.ResponseWriter, r *http.Request, etag string) bool {
	w.Header().Set("Cache-Control", "public; max-age=36000") // 36000 = 10h
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return true
	}
	w.Header().Set("Last-Modified", h.loaded.UTC().Format(http.TimeFormat))
	return false
}

func (h *Handler) etag(kind string, th *things.Thing, extra string, mime string) string {
	return fmt.Sprintf(`W/"%s:%d:%08x:%s:%d:%s:%s"`, kind, generation, h.th.TibiaDatasetSignature(), th.Category(), th.ID(), extra, mime)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	if err := enc.Encode(v); err != nil {
		glog.Errorf("error encoding json: %v", err)
	}
}

type statsCategory struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	MaxID uint16 `json:"max_id"`
}

type stats struct {
	Format        string          `json:"format"`
	ClientVersion string          `json:"client_version"`
	Features      string          `json:"features"`
	Signature     string          `json:"signature"`
	Categories    []statsCategory `json:"categories"`
}

func (h *Handler) statsHandler(w http.ResponseWriter, r *http.Request) {
	ds := h.th.Dataset()
	if ds == nil {
		http.Error(w, things.ErrNoDataset.Error(), http.StatusServiceUnavailable)
		return
	}
	s := stats{
		Format:        ds.Format().String(),
		ClientVersion: ds.ClientVersion().String(),
		Features:      ds.Features().String(),
		Signature:     fmt.Sprintf("%08x", ds.Signature()),
	}
	for c := dat.CATEGORY_ITEM; c < dat.CATEGORY_COUNT; c++ {
		s.Categories = append(s.Categories, statsCategory{Name: c.String(), Count: ds.Count(c), MaxID: ds.MaxID(c)})
	}
	writeJSON(w, s)
}

type listEntry struct {
	ID   uint16 `json:"id"`
	Name string `json:"name,omitempty"`
}

func (h *Handler) listHandler(w http.ResponseWriter, r *http.Request) {
	c, ok := dat.ParseCategory(mux.Vars(r)["category"])
	if !ok {
		http.Error(w, "unknown category", http.StatusNotFound)
		return
	}
	ds := h.th.Dataset()
	if ds == nil {
		http.Error(w, things.ErrNoDataset.Error(), http.StatusServiceUnavailable)
		return
	}
	list := []listEntry{}
	ds.Things(c, func(t *dat.Thing) bool {
		list = append(list, listEntry{ID: t.ID, Name: t.DisplayName()})
		return true
	})
	writeJSON(w, list)
}

func (h *Handler) thingHandler(w http.ResponseWriter, r *http.Request) {
	th := h.thing(w, r)
	if th == nil {
		return
	}
	if h.notModified(w, r, h.etag("thing", th, "", "application/json")) {
		return
	}
	d, err := newDescriptor(th, defaultTile)
	if err != nil {
		http.Error(w, "could not describe thing", http.StatusInternalServerError)
		glog.Errorf("error describing %s: %v", th, err)
		return
	}
	writeJSON(w, d)
}

type spriteLookup struct {
	Group  string `json:"group"`
	Index  int    `json:"index"`
	Sprite uint32 `json:"sprite"`
}

func (h *Handler) spriteHandler(w http.ResponseWriter, r *http.Request) {
	th := h.thing(w, r)
	if th == nil {
		return
	}
	p, err := parseFrameParams(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	fg := th.Descriptor().FrameGroup(p.group)
	writeJSON(w, spriteLookup{
		Group:  p.group.String(),
		Index:  fg.SpriteIndex(p.w, p.h, p.layer, p.x, p.y, p.z, p.phase),
		Sprite: th.Descriptor().Sprite(p.group, p.w, p.h, p.layer, p.x, p.y, p.z, p.phase),
	})
}

func (h *Handler) layoutHandler(w http.ResponseWriter, r *http.Request) {
	th := h.thing(w, r)
	if th == nil {
		return
	}
	p, err := parseFrameParams(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	mime := "image/png"
	if h.notModified(w, r, h.etag("layout", th, p.String(), mime)) {
		return
	}

	img := th.LayoutFrame(p.group, p.x, p.y, p.z, p.phase, p.tile)
	if img == nil {
		http.Error(w, "no such frame group", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", mime)
	w.WriteHeader(http.StatusOK)
	png.Encode(w, img)
}

func (h *Handler) layoutGIFHandler(w http.ResponseWriter, r *http.Request) {
	th := h.thing(w, r)
	if th == nil {
		return
	}
	p, err := parseFrameParams(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	p.phase = 0
	mime := "image/gif"
	if h.notModified(w, r, h.etag("layout", th, p.String(), mime)) {
		return
	}

	frames, delays := th.LayoutAnimation(p.group, p.x, p.y, p.z, p.tile)
	if len(frames) == 0 {
		http.Error(w, "no such frame group", http.StatusNotFound)
		return
	}
	anim := th.Descriptor().Animation(p.group)
	if anim != nil && anim.PingPong() {
		// Play back down to the second phase; the loop restarts on the first.
		for i := len(frames) - 2; i > 0; i-- {
			frames = append(frames, frames[i])
			delays = append(delays, delays[i])
		}
	}
	g := encodeAnimation(frames, delays)
	if anim != nil && anim.LoopCount > 0 {
		// GIF counts repeats after the first loop.
		g.LoopCount = int(anim.LoopCount) - 1
		if g.LoopCount == 0 {
			g.LoopCount = -1
		}
	}

	w.Header().Set("Content-Type", mime)
	w.WriteHeader(http.StatusOK)
	if err := gif.EncodeAll(w, g); err != nil {
		glog.Errorf("error encoding gif of %s: %v", th, err)
	}
}

// encodeAnimation quantizes frames into a GIF whose palette starts with
// transparency.
func encodeAnimation(frames []image.Image, delays []time.Duration) *gif.GIF {
	g := &gif.GIF{}
	q := quantize.MedianCutQuantizer{}
	for i, img := range frames {
		// Up to 255 colors plus 1 space for transparency.
		pal := q.Quantize(make(color.Palette, 0, 255), img)
		palTransparent := image.NewPaletted(img.Bounds(), append(color.Palette{color.Transparent}, pal...))
		draw.Draw(palTransparent, img.Bounds(), img, img.Bounds().Min, draw.Over)

		g.Image = append(g.Image, palTransparent)
		g.Delay = append(g.Delay, int(delays[i]/(10*time.Millisecond)))
		g.Disposal = append(g.Disposal, gif.DisposalBackground)
	}
	g.BackgroundIndex = 0
	return g
}

func (h *Handler) lightHandler(w http.ResponseWriter, r *http.Request) {
	th := h.thing(w, r)
	if th == nil {
		return
	}
	mime := "image/png"
	if h.notModified(w, r, h.etag("light", th, "", mime)) {
		return
	}
	img := th.LightPreview(lightTiles)
	if img == nil {
		http.Error(w, "thing emits no light", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", mime)
	w.WriteHeader(http.StatusOK)
	png.Encode(w, img)
}
