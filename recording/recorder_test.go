package recording

import (
	"bytes"
	"errors"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/inkpad"
)

// callLog is a Target that records the calls it receives.
type callLog struct {
	calls []string
}

func (l *callLog) add(s string)                  { l.calls = append(l.calls, s) }
func (l *callLog) BeginStroke(inkpad.Input)      { l.add("begin") }
func (l *callLog) UpdateStroke(inkpad.Input)     { l.add("update") }
func (l *callLog) EndStroke()                    { l.add("end") }
func (l *callLog) Undo(steps int) int            { l.add("undo"); return steps - 1 }
func (l *callLog) PushCheckpoint()               { l.add("checkpoint") }
func (l *callLog) SetMode(m inkpad.Mode)         { l.add("mode " + m.String()) }
func (l *callLog) SetBrushColor(c inkpad.RGBA)   { l.add("color " + c.Hex()) }
func (l *callLog) SetSizeTier(t inkpad.SizeTier) { l.add("tier " + t.String()) }
func (l *callLog) Fill(c inkpad.RGBA)            { l.add("fill " + c.Hex()) }

func frame(x, y float64, hit bool) inkpad.Input {
	return inkpad.Input{Pos: inkpad.V2(x, y), Hit: hit, Screen: inkpad.V2(x*100, y*100), DT: 1.0 / 60}
}

// session drives a short session with every command type through t.
func session(t Target) {
	t.SetMode(inkpad.ModeInterpolatedLine)
	t.SetBrushColor(inkpad.RGB(1, 0, 0))
	t.SetSizeTier(inkpad.SizeLarge)
	t.BeginStroke(frame(0.2, 0.2, true))
	for i := 1; i <= 10; i++ {
		t.UpdateStroke(frame(0.2+float64(i)*0.05, 0.3, i != 5))
	}
	t.EndStroke()
	t.PushCheckpoint()
	t.BeginStroke(frame(0.5, 0.8, true))
	t.UpdateStroke(frame(0.6, 0.7, true))
	t.EndStroke()
	t.Undo(1)
	t.Fill(inkpad.White)
}

func TestRecorder_Forwards(t *testing.T) {
	var log callLog
	rec := NewRecorder(&log)
	session(rec)

	if got := rec.Undo(3); got != 2 {
		t.Errorf("Undo = %d, want the target's answer 2", got)
	}
	r := rec.FinishRecording()
	if r.Len() != len(log.calls) {
		t.Errorf("recorded %d commands, target saw %d calls", r.Len(), len(log.calls))
	}
	if r.Strokes() != 2 {
		t.Errorf("Strokes = %d, want 2", r.Strokes())
	}
	if want := 13.0 / 60; r.Duration() < want-1e-9 || r.Duration() > want+1e-9 {
		t.Errorf("Duration = %v, want %v", r.Duration(), want)
	}
	if rec.FinishRecording().Len() != 0 {
		t.Error("FinishRecording did not reset the recorder")
	}
}

func TestRecorder_NilTarget(t *testing.T) {
	rec := NewRecorder(nil)
	session(rec)
	if got := rec.Undo(4); got != 4 {
		t.Errorf("Undo = %d, want 4", got)
	}
	if rec.FinishRecording().Len() == 0 {
		t.Error("nothing recorded")
	}
}

func TestPlayback(t *testing.T) {
	tests := []struct {
		name    string
		cmds    []Command
		want    string
		wantErr error
	}{
		{
			name: "closes an open stroke",
			cmds: []Command{BeginStrokeCommand{}, UpdateStrokeCommand{}},
			want: "begin,update,end",
		},
		{
			name: "settings",
			cmds: []Command{SetModeCommand{Mode: inkpad.ModeStampDistance}, SetTierCommand{Tier: inkpad.SizeSmall}, CheckpointCommand{}},
			want: "mode distance,tier small,checkpoint",
		},
		{
			name:    "update without begin",
			cmds:    []Command{UpdateStrokeCommand{}},
			want:    "",
			wantErr: ErrMalformed,
		},
		{
			name:    "update after end",
			cmds:    []Command{BeginStrokeCommand{}, EndStrokeCommand{}, UpdateStrokeCommand{}},
			want:    "begin,end",
			wantErr: ErrMalformed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var log callLog
			err := NewRecording(tt.cmds...).Playback(&log)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Playback = %v, want %v", err, tt.wantErr)
			}
			if got := strings.Join(log.calls, ","); got != tt.want {
				t.Errorf("calls = %q, want %q", got, tt.want)
			}
		})
	}
}

func newPainter(t *testing.T) *inkpad.Painter {
	t.Helper()
	p, err := inkpad.New(inkpad.SurfaceDescriptor{Width: 96, Height: 64},
		inkpad.WithRand(rand.New(rand.NewPCG(1, 2))))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

func TestSaveLoadPlayback(t *testing.T) {
	live := newPainter(t)
	rec := NewRecorder(live)
	session(rec)
	live.Flush()

	path := filepath.Join(t.TempDir(), "session.toml")
	if err := Save(path, rec.FinishRecording()); err != nil {
		t.Fatal(err)
	}
	r, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	replayed := newPainter(t)
	if err := r.Playback(replayed); err != nil {
		t.Fatal(err)
	}
	replayed.Flush()

	if live.HistoryLen() != replayed.HistoryLen() {
		t.Errorf("HistoryLen = %d, want %d", replayed.HistoryLen(), live.HistoryLen())
	}
	if replayed.Mode() != inkpad.ModeInterpolatedLine || replayed.SizeTier() != inkpad.SizeLarge {
		t.Errorf("settings not replayed: mode %v tier %v", replayed.Mode(), replayed.SizeTier())
	}
	a, b := live.Snapshot(), replayed.Snapshot()
	if !bytes.Equal(a.Data(), b.Data()) {
		t.Error("replayed canvas differs from the live one")
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want error
	}{
		{"bad toml", "version = \n", ErrMalformed},
		{"version", "version = 2\n", ErrVersion},
		{"missing version", "[[command]]\nop = \"end\"\n", ErrVersion},
		{"unknown key", "version = 1\n[[command]]\nop = \"end\"\nspeed = 3\n", ErrMalformed},
		{"unknown op", "version = 1\n[[command]]\nop = \"erase\"\n", ErrMalformed},
		{"unknown mode", "version = 1\n[[command]]\nop = \"mode\"\nvalue = \"spray\"\n", ErrMalformed},
		{"unknown tier", "version = 1\n[[command]]\nop = \"tier\"\nvalue = \"huge\"\n", ErrMalformed},
		{"negative undo", "version = 1\n[[command]]\nop = \"undo\"\nsteps = -1\n", ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(strings.NewReader(tt.text)); !errors.Is(err, tt.want) {
				t.Errorf("Decode = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	r := NewRecording(
		BeginStrokeCommand{Input: frame(0.25, 0.5, true)},
		UndoCommand{Steps: 2},
		SetColorCommand{Color: inkpad.Hex("#3366ff")},
	)
	var buf bytes.Buffer
	if err := Encode(&buf, r); err != nil {
		t.Fatal(err)
	}
	text := buf.String()
	for _, want := range []string{"version = 1", `op = "begin"`, "x = 0.25", "hit = true", "steps = 2", `value = "#3366ffff"`} {
		if !strings.Contains(text, want) {
			t.Errorf("encoded recording lacks %q:\n%s", want, text)
		}
	}

	got, err := Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if c, ok := got.Commands()[0].(BeginStrokeCommand); !ok || c.Input != frame(0.25, 0.5, true) {
		t.Errorf("first command = %#v", got.Commands()[0])
	}
}

func TestCommandType_String(t *testing.T) {
	for i := range commandTypeNames {
		ct := CommandType(i)
		if got, ok := parseCommandType(ct.String()); !ok || got != ct {
			t.Errorf("parseCommandType(%q) = %v, %v", ct.String(), got, ok)
		}
	}
	if CommandType(200).String() != "unknown" {
		t.Error("out of range type should print unknown")
	}
}
