package recording

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/gogpu/inkpad"
)

// FormatVersion is written to every saved recording.
const FormatVersion = 1

var (
	// ErrMalformed reports a recording that cannot be decoded or played.
	ErrMalformed = errors.New("recording: malformed")

	// ErrVersion reports a recording written by an unknown format version.
	ErrVersion = errors.New("recording: unsupported version")
)

type file struct {
	Version  int     `toml:"version"`
	Commands []entry `toml:"command"`
}

// entry is the flat TOML form of a Command. Only the fields the op uses
// are written.
type entry struct {
	Op      string  `toml:"op"`
	X       float64 `toml:"x,omitempty"`
	Y       float64 `toml:"y,omitempty"`
	Hit     bool    `toml:"hit,omitempty"`
	ScreenX float64 `toml:"sx,omitempty"`
	ScreenY float64 `toml:"sy,omitempty"`
	DT      float64 `toml:"dt,omitempty"`
	Steps   int     `toml:"steps,omitempty"`
	Value   string  `toml:"value,omitempty"`
}

func inputEntry(op CommandType, in inkpad.Input) entry {
	return entry{
		Op:      op.String(),
		X:       in.Pos.X,
		Y:       in.Pos.Y,
		Hit:     in.Hit,
		ScreenX: in.Screen.X,
		ScreenY: in.Screen.Y,
		DT:      in.DT,
	}
}

func (e entry) input() inkpad.Input {
	return inkpad.Input{
		Pos:    inkpad.V2(e.X, e.Y),
		Hit:    e.Hit,
		Screen: inkpad.V2(e.ScreenX, e.ScreenY),
		DT:     e.DT,
	}
}

func toEntry(c Command) entry {
	switch c := c.(type) {
	case BeginStrokeCommand:
		return inputEntry(CmdBeginStroke, c.Input)
	case UpdateStrokeCommand:
		return inputEntry(CmdUpdateStroke, c.Input)
	case UndoCommand:
		return entry{Op: c.Type().String(), Steps: c.Steps}
	case SetModeCommand:
		return entry{Op: c.Type().String(), Value: c.Mode.String()}
	case SetColorCommand:
		return entry{Op: c.Type().String(), Value: c.Color.Hex()}
	case SetTierCommand:
		return entry{Op: c.Type().String(), Value: c.Tier.String()}
	case FillCommand:
		return entry{Op: c.Type().String(), Value: c.Color.Hex()}
	default:
		return entry{Op: c.Type().String()}
	}
}

func (e entry) command() (Command, error) {
	t, ok := parseCommandType(e.Op)
	if !ok {
		return nil, fmt.Errorf("unknown op %q", e.Op)
	}
	switch t {
	case CmdBeginStroke:
		return BeginStrokeCommand{Input: e.input()}, nil
	case CmdUpdateStroke:
		return UpdateStrokeCommand{Input: e.input()}, nil
	case CmdEndStroke:
		return EndStrokeCommand{}, nil
	case CmdUndo:
		if e.Steps < 0 {
			return nil, fmt.Errorf("negative undo steps %d", e.Steps)
		}
		return UndoCommand{Steps: e.Steps}, nil
	case CmdCheckpoint:
		return CheckpointCommand{}, nil
	case CmdSetMode:
		m, ok := inkpad.ParseMode(e.Value)
		if !ok {
			return nil, fmt.Errorf("unknown mode %q", e.Value)
		}
		return SetModeCommand{Mode: m}, nil
	case CmdSetTier:
		st, ok := inkpad.ParseSizeTier(e.Value)
		if !ok {
			return nil, fmt.Errorf("unknown size tier %q", e.Value)
		}
		return SetTierCommand{Tier: st}, nil
	case CmdSetColor:
		return SetColorCommand{Color: inkpad.Hex(e.Value)}, nil
	default:
		return FillCommand{Color: inkpad.Hex(e.Value)}, nil
	}
}

// Encode writes r as TOML.
func Encode(w io.Writer, r *Recording) error {
	f := file{Version: FormatVersion, Commands: make([]entry, len(r.commands))}
	for i, c := range r.commands {
		f.Commands[i] = toEntry(c)
	}
	return toml.NewEncoder(w).Encode(f)
}

// Decode reads a recording written by Encode.
func Decode(rd io.Reader) (*Recording, error) {
	var f file
	md, err := toml.NewDecoder(rd).Decode(&f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%w: unknown keys %s", ErrMalformed, strings.Join(keys, ", "))
	}
	if f.Version != FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrVersion, f.Version)
	}
	cmds := make([]Command, len(f.Commands))
	for i, e := range f.Commands {
		c, err := e.command()
		if err != nil {
			return nil, fmt.Errorf("%w: command %d: %w", ErrMalformed, i, err)
		}
		cmds[i] = c
	}
	return &Recording{commands: cmds}, nil
}

// Load reads a recording file.
func Load(path string) (*Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("recording: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Save writes r to path, replacing any existing file only once the new
// one is complete.
func Save(path string, r *Recording) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".inkpad-rec-*")
	if err != nil {
		return fmt.Errorf("recording: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()
	if err = Encode(tmp, r); err != nil {
		return fmt.Errorf("recording: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("recording: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("recording: %w", err)
	}
	return nil
}
