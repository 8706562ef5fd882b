// Package compiler is the root entry point of program emission: it walks
// a measurement tree exactly once, wires the sweep scaffolding around it,
// and assembles the final device program together with its result
// channels.
package compiler

import (
	"context"
	"fmt"
	"io"

	"github.com/andncl/arbok-driver/internal/ctxlog"
	"github.com/andncl/arbok-driver/internal/qua"
	"github.com/andncl/arbok-driver/internal/sequence"
	"github.com/andncl/arbok-driver/internal/sweep"
)

// CompileError reports an invariant violation detected at final
// assembly. The failed pass's resource state is discarded entirely.
type CompileError struct {
	Reason string
}

func (e *CompileError) Error() string { return "compile: " + e.Reason }

// Channel describes one result channel of the compiled program, for the
// runtime collaborator to bind when streaming values back.
type Channel struct {
	Name string
	// BufferLen is the per-pass buffer size; 0 means the channel
	// accumulates all samples instead.
	BufferLen int
}

// Result is a successfully compiled program.
type Result struct {
	Program  *qua.Program
	Channels []Channel
	Warnings []sweep.Warning
}

// String returns the deterministic program text.
func (r *Result) String() string { return r.Program.String() }

// WriteTo writes the program text to w.
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, r.Program.String())
	return int64(n), err
}

// Compile emits the whole tree rooted at m into a fresh program.
// Compilation is single-threaded, synchronous, and deterministic: the
// same tree and sweep declarations produce byte-identical text. Each
// call starts from a fresh resource allocator; nothing is reused from a
// previous or failed pass.
func Compile(ctx context.Context, m *sequence.Measurement) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("compilation started", "measurement", m.Name())

	m.ClearSweepBindings()
	prog := qua.NewProgram()

	sw := m.Sweeps()
	sweeping := sw != nil && !sw.Empty()
	if sweeping {
		if err := sw.Declare(ctx, prog); err != nil {
			return nil, err
		}
	}
	if err := m.EmitDeclare(ctx, prog); err != nil {
		return nil, err
	}

	loop := prog.InfiniteLoop()
	loop.Pause()
	m.ShotReset(loop)
	body := loop
	if sweeping {
		body = sw.OpenLoops(loop)
	}
	if err := m.EmitBody(ctx, prog, body); err != nil {
		return nil, err
	}
	m.ShotAdvance(body)

	shotChannel := m.Name() + "_shots"
	channels, err := assembleChannels(prog, sw, sweeping, shotChannel)
	if err != nil {
		return nil, err
	}
	if err := m.EmitStream(ctx, prog); err != nil {
		return nil, err
	}
	channels = append(channels, Channel{Name: shotChannel, BufferLen: 1})

	res := &Result{Program: prog, Channels: channels}
	if sweeping {
		res.Warnings = sw.Warnings()
	}
	logger.Debug("compilation finished",
		"measurement", m.Name(),
		"channels", len(channels),
		"sweep_size", m.SweepSize(),
	)
	return res, nil
}

// assembleChannels attaches one stream-processing directive per
// allocated observable and rejects duplicate channel names. The shot
// counter's channel name is reserved up front.
func assembleChannels(prog *qua.Program, sw *sweep.Set, sweeping bool, reserved string) ([]Channel, error) {
	seen := map[string]struct{}{reserved: {}}
	var out []Channel
	for _, ch := range prog.Channels() {
		if _, dup := seen[ch.Name]; dup {
			return nil, &CompileError{Reason: fmt.Sprintf(
				"result channel %q declared twice", ch.Name)}
		}
		seen[ch.Name] = struct{}{}
		if sweeping {
			prog.BufferSave(ch.Stream, sw.Size(), ch.Name)
			out = append(out, Channel{Name: ch.Name, BufferLen: sw.Size()})
		} else {
			prog.SaveAll(ch.Stream, ch.Name)
			out = append(out, Channel{Name: ch.Name})
		}
	}
	return out, nil
}
