// Package inkpad is a real-time stamp painting engine.
//
// # Overview
//
// A Painter turns a stream of per-frame pointer samples into brush stamps
// and composites them onto an RGBA canvas. It is built for input that
// arrives once per rendered frame (mouse, stylus, hand or gaze tracking)
// and is driven from a single goroutine.
//
// # Quick Start
//
//	import "github.com/gogpu/inkpad"
//
//	p, err := inkpad.New(inkpad.SurfaceDescriptor{Width: 1920, Height: 1080},
//		inkpad.WithMode(inkpad.ModeInterpolatedLine),
//		inkpad.WithBrushColor(inkpad.Hex("#ff8800")))
//	if err != nil {
//		return err
//	}
//	defer p.Close()
//
//	p.BeginStroke(inkpad.Input{Pos: start, Hit: true})
//	for each frame {
//		p.UpdateStroke(inkpad.Input{Pos: uv, Hit: ok, Screen: px, DT: dt})
//	}
//	p.EndStroke()
//
// # Coordinates
//
// Positions are normalized surface coordinates: (0,0) is the top-left
// corner and (1,1) the bottom-right. A stamp's Size is its radius as a
// fraction of the canvas width, so stamps stay round on non-square
// canvases.
//
// # Modes
//
// Four modes place stamps: at a fixed time interval, after a travel
// distance, along an interpolated line, or along a line whose width
// follows pointer speed. Effects (hue cycling, spin, texture cycling,
// opacity jitter, drips) and named presets layer on top.
//
// # Render paths
//
// Stamps are queued in batches of 128 and rendered through one of four
// render paths chosen at construction: full-canvas, dirty-region,
// dirty-region with ping-pong buffers, or a compute path that runs a
// StampAccelerator over the dirty region. A failing accelerator is
// dropped and the Painter falls back to a fragment path.
//
// # Undo
//
// Snapshots are pushed at stroke start, every chunk of a long stroke
// (2 s by default), and at explicit checkpoints. Undo restores the
// previous snapshot and never removes the first one.
//
// # Logging
//
// inkpad is silent by default. Call SetLogger with a *slog.Logger to see
// lifecycle and downgrade events.
package inkpad

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
