// Package recording captures painter sessions as commands.
//
// A Recorder sits in front of a painter and logs every stroke frame,
// undo and brush change it forwards. The finished Recording can be saved
// as TOML, loaded back and played into any painter, which reproduces the
// session frame for frame.
//
//	rec := recording.NewRecorder(painter)
//	rec.BeginStroke(in)
//	rec.UpdateStroke(next)
//	rec.EndStroke()
//	r := rec.FinishRecording()
//	err := recording.Save("session.toml", r)
package recording

import "github.com/gogpu/inkpad"

// CommandType identifies the type of a command.
type CommandType uint8

const (
	// Stroke commands
	CmdBeginStroke  CommandType = iota // First frame of a stroke
	CmdUpdateStroke                    // Following frame
	CmdEndStroke                       // Pointer released

	// History commands
	CmdUndo       // Step back through snapshots
	CmdCheckpoint // Push a manual snapshot

	// Brush and canvas commands
	CmdSetMode
	CmdSetColor
	CmdSetTier
	CmdFill
)

var commandTypeNames = [...]string{
	CmdBeginStroke:  "begin",
	CmdUpdateStroke: "update",
	CmdEndStroke:    "end",
	CmdUndo:         "undo",
	CmdCheckpoint:   "checkpoint",
	CmdSetMode:      "mode",
	CmdSetColor:     "color",
	CmdSetTier:      "tier",
	CmdFill:         "fill",
}

// String returns the name used for the command in saved recordings.
func (t CommandType) String() string {
	if int(t) < len(commandTypeNames) {
		return commandTypeNames[t]
	}
	return "unknown"
}

func parseCommandType(s string) (CommandType, bool) {
	for i, name := range commandTypeNames {
		if name == s {
			return CommandType(i), true
		}
	}
	return 0, false
}

// Command is one recorded painter call.
type Command interface {
	Type() CommandType
}

// BeginStrokeCommand starts a stroke.
type BeginStrokeCommand struct {
	Input inkpad.Input
}

// UpdateStrokeCommand feeds one frame of a stroke.
type UpdateStrokeCommand struct {
	Input inkpad.Input
}

// EndStrokeCommand ends the current stroke.
type EndStrokeCommand struct{}

// UndoCommand requests Steps undo steps.
type UndoCommand struct {
	Steps int
}

// CheckpointCommand pushes a manual snapshot.
type CheckpointCommand struct{}

// SetModeCommand switches the stroke mode.
type SetModeCommand struct {
	Mode inkpad.Mode
}

// SetColorCommand sets the brush color.
type SetColorCommand struct {
	Color inkpad.RGBA
}

// SetTierCommand selects a brush size tier.
type SetTierCommand struct {
	Tier inkpad.SizeTier
}

// FillCommand clears the canvas to Color.
type FillCommand struct {
	Color inkpad.RGBA
}

func (BeginStrokeCommand) Type() CommandType  { return CmdBeginStroke }
func (UpdateStrokeCommand) Type() CommandType { return CmdUpdateStroke }
func (EndStrokeCommand) Type() CommandType    { return CmdEndStroke }
func (UndoCommand) Type() CommandType         { return CmdUndo }
func (CheckpointCommand) Type() CommandType   { return CmdCheckpoint }
func (SetModeCommand) Type() CommandType      { return CmdSetMode }
func (SetColorCommand) Type() CommandType     { return CmdSetColor }
func (SetTierCommand) Type() CommandType      { return CmdSetTier }
func (FillCommand) Type() CommandType         { return CmdFill }
