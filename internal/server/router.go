package server

import (
	"net/http"
	"strings"
)

// The route table is a fixed, ordered list of path templates; the first
// template that matches wins. Template segments are literals ("fonts"),
// placeholders ("{tileset}"), or placeholders with a literal suffix inside
// the segment ("{range}.pbf", "{tileset}.style.json"). A placeholder
// declared as {name:int} only matches unsigned decimal digits, so e.g. a
// non-numeric zoom falls through to later templates and finally to the
// static fallback.

type params map[string]string

type handlerFunc func(w http.ResponseWriter, r *http.Request, p params)

type segment struct {
	literal string
	param   string
	suffix  string
	numeric bool
}

type route struct {
	template string
	segments []segment
	handler  handlerFunc
}

func newRoute(template string, handler handlerFunc) route {
	parts := strings.Split(strings.TrimPrefix(template, "/"), "/")
	segments := make([]segment, 0, len(parts))

	for _, part := range parts {
		if !strings.HasPrefix(part, "{") {
			segments = append(segments, segment{literal: part})
			continue
		}

		end := strings.Index(part, "}")
		name := part[1:end]
		seg := segment{suffix: part[end+1:]}
		if base, ok := strings.CutSuffix(name, ":int"); ok {
			seg.param = base
			seg.numeric = true
		} else {
			seg.param = name
		}
		segments = append(segments, seg)
	}

	return route{template: template, segments: segments, handler: handler}
}

func (rt route) match(path string) (params, bool) {
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	if len(parts) != len(rt.segments) {
		return nil, false
	}

	p := make(params, len(rt.segments))
	for i, seg := range rt.segments {
		part := parts[i]
		if seg.param == "" {
			if part != seg.literal {
				return nil, false
			}
			continue
		}

		value, ok := strings.CutSuffix(part, seg.suffix)
		if !ok || value == "" {
			return nil, false
		}
		if seg.numeric && !isDigits(value) {
			return nil, false
		}
		p[seg.param] = value
	}

	return p, true
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
