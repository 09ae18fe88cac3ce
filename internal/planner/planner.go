package planner

import (
	"fmt"

	"github.com/backmassage/mediaconv/internal/config"
	"github.com/backmassage/mediaconv/internal/convert"
	"github.com/backmassage/mediaconv/internal/media"
	"github.com/backmassage/mediaconv/internal/naming"
)

// Classifier reports the kind of a source. probe.Classify satisfies it.
type Classifier func(media.Source) media.Kind

// BuildPlan routes src according to mode and computes its output path
// under destDir. classify is called only in auto mode.
func BuildPlan(mode config.Mode, src media.Source, destDir string, classify Classifier) *FilePlan {
	plan := &FilePlan{Source: src}

	switch mode {
	case config.ModeStatic:
		plan.Route = RouteStatic
	case config.ModeAnimated:
		plan.Route = RouteAnimated
	case config.ModeVideo:
		if src.IsVideo() {
			plan.Route = RouteVideo
		} else {
			plan.SkipReason = convert.ErrNotVideo
		}
	case config.ModeAuto:
		plan.Kind = classify(src)
		plan.Route = routeForKind(plan.Kind)
		if plan.Route == RouteSkip {
			plan.SkipReason = convert.ErrUnsupported
		}
	default:
		plan.SkipReason = fmt.Errorf("%w: mode %q", convert.ErrUnsupported, mode)
	}

	if plan.Route != RouteSkip {
		plan.OutputPath = naming.OutputPath(destDir, src.Stem(), plan.Route.Ext())
	}
	return plan
}

func routeForKind(k media.Kind) Route {
	switch k {
	case media.KindStatic:
		return RouteStatic
	case media.KindAnimated:
		return RouteAnimated
	case media.KindVideo:
		return RouteVideo
	default:
		return RouteSkip
	}
}
