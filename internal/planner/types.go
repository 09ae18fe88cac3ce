package planner

import "github.com/backmassage/mediaconv/internal/media"

// Route is the per-file encoder decision.
type Route int

const (
	RouteSkip Route = iota
	RouteStatic
	RouteAnimated
	RouteVideo
)

func (r Route) String() string {
	switch r {
	case RouteStatic:
		return "static"
	case RouteAnimated:
		return "animated"
	case RouteVideo:
		return "video"
	default:
		return "skip"
	}
}

// Target returns the upper-case output format name used in diagnostics,
// or "" for RouteSkip.
func (r Route) Target() string {
	switch r {
	case RouteStatic:
		return "PNG"
	case RouteAnimated:
		return "GIF"
	case RouteVideo:
		return "MP4"
	default:
		return ""
	}
}

// Ext returns the output extension for the route, or "" for RouteSkip.
func (r Route) Ext() string {
	switch r {
	case RouteStatic:
		return media.StaticExt
	case RouteAnimated:
		return media.AnimatedExt
	case RouteVideo:
		return media.VideoExt
	default:
		return ""
	}
}

// FilePlan holds the decision for a single source. It is produced by
// BuildPlan and consumed by the dispatcher.
type FilePlan struct {
	Source     media.Source
	Route      Route
	Kind       media.Kind // probed kind; KindUnknown outside auto mode
	SkipReason error      // set when Route is RouteSkip
	OutputPath string     // empty when Route is RouteSkip
}

// Skip reports whether the file will not be handed to any encoder.
func (p *FilePlan) Skip() bool { return p.Route == RouteSkip }
