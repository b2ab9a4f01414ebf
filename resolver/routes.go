package resolver

import (
	"path"
	"sort"
	"strings"

	"github.com/yshengliao/convroute/pkg/naming"
	"github.com/yshengliao/convroute/registry"
)

// Route is one handler method and the URI prefix reaching it. Arguments
// follow the prefix as further segments.
type Route struct {
	URI     string
	Handler string
	Method  string
	File    string
	MinArgs int
	MaxArgs int
	Bound   bool
}

// Routes lists the routes of handlers under the conventions of cfg, sorted
// by URI. A handler file next to a directory of the same name is never
// reached, the walk descends into the directory, so it is left out. Only
// directories holding one of handlers are known.
func Routes(cfg Config, handlers []*registry.Handler) []Route {
	c := readConventions(cfg)
	defaultHandler := c.handlerFor(c.classDefault)
	defaultMethod := c.methodFor(c.functionDefault)

	dirs := make(map[string]bool)
	for _, h := range handlers {
		for dir := path.Dir(h.File); dir != "."; dir = path.Dir(dir) {
			dirs[dir] = true
		}
	}

	var routes []Route
	for _, h := range handlers {
		var prefix []string
		if dir := path.Dir(h.File); dir != "." {
			prefix = strings.Split(dir, "/")
		}
		if h.Name != defaultHandler {
			segment := naming.Segment(h.Name, c.classPrefix, c.classSuffix)
			if dirs[path.Join(path.Dir(h.File), segment)] {
				continue
			}
			prefix = append(prefix, segment)
		}

		for _, m := range h.Methods() {
			segments := prefix
			if m.Name != defaultMethod {
				segments = append(segments[:len(segments):len(segments)],
					naming.Segment(m.Name, c.functionPrefix, c.functionSuffix))
			}
			routes = append(routes, Route{
				URI:     "/" + strings.Join(segments, "/"),
				Handler: h.Name,
				Method:  m.Name,
				File:    h.File,
				MinArgs: m.MinArgs,
				MaxArgs: m.MaxArgs,
				Bound:   m.Invoke != nil,
			})
		}
	}

	sort.SliceStable(routes, func(i, j int) bool { return routes[i].URI < routes[j].URI })
	return routes
}
