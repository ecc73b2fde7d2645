package recording

import (
	"fmt"

	"github.com/gogpu/inkpad"
)

// Target receives painter calls. *inkpad.Painter implements it.
type Target interface {
	BeginStroke(in inkpad.Input)
	UpdateStroke(in inkpad.Input)
	EndStroke()
	Undo(steps int) int
	PushCheckpoint()
	SetMode(m inkpad.Mode)
	SetBrushColor(c inkpad.RGBA)
	SetSizeTier(t inkpad.SizeTier)
	Fill(c inkpad.RGBA)
}

// Recorder logs painter calls as commands and forwards them to its
// target. A nil target records without painting.
//
// The Recorder is not safe for concurrent use.
type Recorder struct {
	target   Target
	commands []Command
}

// NewRecorder returns a Recorder that forwards to target.
func NewRecorder(target Target) *Recorder {
	return &Recorder{target: target}
}

// FinishRecording returns the commands recorded so far and resets the
// Recorder.
func (r *Recorder) FinishRecording() *Recording {
	rec := &Recording{commands: r.commands}
	r.commands = nil
	return rec
}

func (r *Recorder) record(c Command) {
	r.commands = append(r.commands, c)
}

func (r *Recorder) BeginStroke(in inkpad.Input) {
	r.record(BeginStrokeCommand{Input: in})
	if r.target != nil {
		r.target.BeginStroke(in)
	}
}

func (r *Recorder) UpdateStroke(in inkpad.Input) {
	r.record(UpdateStrokeCommand{Input: in})
	if r.target != nil {
		r.target.UpdateStroke(in)
	}
}

func (r *Recorder) EndStroke() {
	r.record(EndStrokeCommand{})
	if r.target != nil {
		r.target.EndStroke()
	}
}

// Undo records the request and returns the steps the target actually
// took. Without a target it returns steps.
func (r *Recorder) Undo(steps int) int {
	r.record(UndoCommand{Steps: steps})
	if r.target != nil {
		return r.target.Undo(steps)
	}
	return steps
}

func (r *Recorder) PushCheckpoint() {
	r.record(CheckpointCommand{})
	if r.target != nil {
		r.target.PushCheckpoint()
	}
}

func (r *Recorder) SetMode(m inkpad.Mode) {
	r.record(SetModeCommand{Mode: m})
	if r.target != nil {
		r.target.SetMode(m)
	}
}

func (r *Recorder) SetBrushColor(c inkpad.RGBA) {
	r.record(SetColorCommand{Color: c})
	if r.target != nil {
		r.target.SetBrushColor(c)
	}
}

func (r *Recorder) SetSizeTier(t inkpad.SizeTier) {
	r.record(SetTierCommand{Tier: t})
	if r.target != nil {
		r.target.SetSizeTier(t)
	}
}

func (r *Recorder) Fill(c inkpad.RGBA) {
	r.record(FillCommand{Color: c})
	if r.target != nil {
		r.target.Fill(c)
	}
}

// Recording is an immutable list of painter commands.
type Recording struct {
	commands []Command
}

// NewRecording wraps commands. The slice is not copied.
func NewRecording(commands ...Command) *Recording {
	return &Recording{commands: commands}
}

// Commands returns the recorded commands. Callers must not modify it.
func (r *Recording) Commands() []Command {
	return r.commands
}

// Len returns the number of commands.
func (r *Recording) Len() int {
	return len(r.commands)
}

// Duration returns the summed frame time of the stroke commands, in
// seconds.
func (r *Recording) Duration() float64 {
	var d float64
	for _, c := range r.commands {
		switch c := c.(type) {
		case BeginStrokeCommand:
			d += c.Input.DT
		case UpdateStrokeCommand:
			d += c.Input.DT
		}
	}
	return d
}

// Strokes returns the number of recorded strokes.
func (r *Recording) Strokes() int {
	n := 0
	for _, c := range r.commands {
		if c.Type() == CmdBeginStroke {
			n++
		}
	}
	return n
}

// Playback replays the recording into target. A stroke still open at the
// end of the recording is ended.
func (r *Recording) Playback(target Target) error {
	open := false
	for i, cmd := range r.commands {
		switch c := cmd.(type) {
		case BeginStrokeCommand:
			target.BeginStroke(c.Input)
			open = true
		case UpdateStrokeCommand:
			if !open {
				return fmt.Errorf("%w: command %d updates a stroke that was never begun", ErrMalformed, i)
			}
			target.UpdateStroke(c.Input)
		case EndStrokeCommand:
			target.EndStroke()
			open = false
		case UndoCommand:
			target.Undo(c.Steps)
		case CheckpointCommand:
			target.PushCheckpoint()
		case SetModeCommand:
			target.SetMode(c.Mode)
		case SetColorCommand:
			target.SetBrushColor(c.Color)
		case SetTierCommand:
			target.SetSizeTier(c.Tier)
		case FillCommand:
			target.Fill(c.Color)
		default:
			return fmt.Errorf("%w: command %d has type %T", ErrMalformed, i, cmd)
		}
	}
	if open {
		target.EndStroke()
	}
	return nil
}
