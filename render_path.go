package inkpad

import "fmt"

// RenderPath selects how the compositor moves pixels during a flush.
// It is chosen once when the Painter is configured.
type RenderPath uint8

const (
	// PathFragmentFull renders every canvas pixel through a full-size
	// temporary and copies it back.
	PathFragmentFull RenderPath = iota

	// PathFragmentRegion renders only the padded dirty rectangle into one
	// temporary, reading the canvas, then copies it back.
	PathFragmentRegion

	// PathFragmentRegionSafe is PathFragmentRegion with two temporaries
	// (ping-pong), for targets that cannot be sampled while a copy of
	// them is written.
	PathFragmentRegionSafe

	// PathCompute snapshots the region into a source buffer and runs a
	// StampAccelerator kernel that writes the canvas directly.
	PathCompute
)

// String returns the render path name.
func (p RenderPath) String() string {
	switch p {
	case PathFragmentFull:
		return "FragmentFull"
	case PathFragmentRegion:
		return "FragmentRegion"
	case PathFragmentRegionSafe:
		return "FragmentRegionSafe"
	case PathCompute:
		return "Compute"
	default:
		return "Unknown"
	}
}

// DoubleBuffered reports whether the path reads from a separate snapshot
// of the pixels it writes, rather than from the live canvas.
func (p RenderPath) DoubleBuffered() bool {
	return p == PathFragmentRegionSafe || p == PathCompute
}

// RegionLimited reports whether the path touches only the dirty rectangle.
func (p RenderPath) RegionLimited() bool {
	return p != PathFragmentFull
}

// ParseRenderPath returns the path with the given String name.
func ParseRenderPath(s string) (RenderPath, bool) {
	for p := PathFragmentFull; p <= PathCompute; p++ {
		if p.String() == s {
			return p, true
		}
	}
	return 0, false
}

// SurfaceDescriptor describes the canvas surface.
type SurfaceDescriptor struct {
	Width, Height int

	// RandomWrite reports that the surface accepts unordered per-pixel
	// writes from a compute kernel.
	RandomWrite bool
}

// PathConfig holds the render path preferences.
type PathConfig struct {
	// DirtyTracking limits updates to the padded dirty rectangle.
	DirtyTracking bool

	// SafeBlit forces the ping-pong region path.
	SafeBlit bool

	// Compute opts in to the compute path when an accelerator is present.
	Compute bool
}

// DefaultPathConfig returns dirty tracking on, safe blit and compute off.
func DefaultPathConfig() PathConfig {
	return PathConfig{DirtyTracking: true}
}

// SelectRenderPath picks the render path for a surface. When compute was
// requested but cannot be used, it returns the fragment path together
// with an error wrapping ErrNoComputeSupport for the caller to log.
//
// Rules, in order:
//  1. Compute requested, accelerator present and surface RandomWrite: PathCompute.
//  2. Dirty tracking disabled: PathFragmentFull.
//  3. SafeBlit: PathFragmentRegionSafe, otherwise PathFragmentRegion.
func SelectRenderPath(desc SurfaceDescriptor, cfg PathConfig, hasAccelerator bool) (RenderPath, error) {
	var err error
	if cfg.Compute {
		switch {
		case !hasAccelerator:
			err = fmt.Errorf("no accelerator configured: %w", ErrNoComputeSupport)
		case !desc.RandomWrite:
			err = fmt.Errorf("surface lacks random write: %w", ErrNoComputeSupport)
		default:
			return PathCompute, nil
		}
	}
	return fragmentPath(cfg), err
}

// fragmentPath applies rules 2 and 3 of SelectRenderPath.
func fragmentPath(cfg PathConfig) RenderPath {
	switch {
	case !cfg.DirtyTracking:
		return PathFragmentFull
	case cfg.SafeBlit:
		return PathFragmentRegionSafe
	default:
		return PathFragmentRegion
	}
}
