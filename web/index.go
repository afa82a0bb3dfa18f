package web

import (
	"html/template"
	"net/http"

	"github.com/golang/glog"

	"badc0de.net/pkg/go-tibia-things/dat"
	"badc0de.net/pkg/go-tibia-things/datafiles"
	"badc0de.net/pkg/go-tibia-things/things"
)

var thingTable = template.Must(template.New("thingtable").Parse(datafiles.ThingTableHTML))

type thingRow struct {
	ID    uint16
	Name  string
	Flags string
}

type thingTablePage struct {
	Category      string
	Categories    []string
	Format        string
	ClientVersion string
	Things        []thingRow
}

// indexHandler renders an HTML table of one category, items unless the
// category query parameter names another.
func (h *Handler) indexHandler(w http.ResponseWriter, r *http.Request) {
	ds := h.th.Dataset()
	if ds == nil {
		http.Error(w, things.ErrNoDataset.Error(), http.StatusServiceUnavailable)
		return
	}
	c := dat.CATEGORY_ITEM
	if name := r.URL.Query().Get("category"); name != "" {
		var ok bool
		if c, ok = dat.ParseCategory(name); !ok {
			http.Error(w, "unknown category", http.StatusNotFound)
			return
		}
	}

	page := thingTablePage{
		Category:      c.String(),
		Format:        ds.Format().String(),
		ClientVersion: ds.ClientVersion().String(),
	}
	for cc := dat.CATEGORY_ITEM; cc < dat.CATEGORY_COUNT; cc++ {
		page.Categories = append(page.Categories, cc.String())
	}
	ds.Things(c, func(t *dat.Thing) bool {
		page.Things = append(page.Things, thingRow{ID: t.ID, Name: t.DisplayName(), Flags: t.Flags.String()})
		return true
	})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := thingTable.Execute(w, page); err != nil {
		glog.Errorf("error rendering thing table: %v", err)
	}
}
