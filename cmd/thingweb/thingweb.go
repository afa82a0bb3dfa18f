// Command thingweb serves a read-only HTTP inspector for a Tibia.dat or
// appearances catalog.
package main

import (
	"flag"
	"net"
	"net/http"
	"os"

	"badc0de.net/pkg/flagutil/v1"
	"github.com/common-nighthawk/go-figure"
	"github.com/golang/glog"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"golang.org/x/net/netutil"

	"badc0de.net/pkg/go-tibia-things/dat"
	"badc0de.net/pkg/go-tibia-things/things/full"
	"badc0de.net/pkg/go-tibia-things/web"
)

var (
	banner = flag.Bool("banner", true, "whether to print a banner on startup")
)

func main() {
	full.SetupFilePathFlags()
	flagutil.Parse()

	th, cfg, err := full.FromFilePathFlags()
	if err != nil {
		glog.Exitf("loading catalog: %v", err)
	}
	ds := th.Dataset()
	glog.Infof("loaded %s catalog for client %s: %d items, %d outfits", ds.Format(), ds.ClientVersion(), ds.Count(dat.CATEGORY_ITEM), ds.Count(dat.CATEGORY_OUTFIT))

	r := mux.NewRouter()
	web.NewHandler(th).RegisterRoutes(r)

	l, err := net.Listen("tcp", cfg.Web.ListenAddress)
	if err != nil {
		glog.Exitf("listening on %s: %v", cfg.Web.ListenAddress, err)
	}
	if cfg.Web.MaxConnections > 0 {
		l = netutil.LimitListener(l, cfg.Web.MaxConnections)
	}

	if *banner {
		figure.NewFigure("thingweb", "", true).Print()
	}
	glog.Infof("serving on %s", l.Addr())
	glog.Fatal(http.Serve(l, handlers.LoggingHandler(os.Stderr, handlers.CompressHandler(r))))
}
