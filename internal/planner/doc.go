// Package planner decides, per source file, which encoder handles it and
// where its output goes.
//
// The decision matrix (planner.go):
//
//	mode      input             route
//	static    any               RouteStatic
//	animated  any               RouteAnimated
//	video     .webm             RouteVideo
//	video     other             RouteSkip (not a video)
//	auto      probed video      RouteVideo
//	auto      probed animated   RouteAnimated
//	auto      probed static     RouteStatic
//	auto      unknown           RouteSkip (unsupported format)
//
// The probe is consulted only in auto mode.
package planner
