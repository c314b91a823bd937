// Package level compiles CUE level definitions into game configurations.
//
// A level directory holds one or more .cue files declaring levels under the
// top-level "level" struct:
//
//	level: intro: {
//		width:  8
//		height: 8
//		kinds:  5
//		seed:   42
//	}
//
//	level: gap: {
//		kinds: 3
//		layout: [
//			"ABC",
//			"B.A",
//			"CAB",
//		]
//	}
//
// Every level is unified with the #Level schema before it is decoded, so
// type and range errors carry CUE source positions. Validate then checks
// the rules CUE cannot express (layout shape, kinds used by the layout).
package level
