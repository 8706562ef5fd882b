package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/andncl/arbok-driver/internal/builder"
	"github.com/andncl/arbok-driver/internal/compiler"
	"github.com/andncl/arbok-driver/internal/ctxlog"
)

// Run builds every configured measurement and compiles it into its
// device program, writing the rendered text to the configured output.
func (a *App) Run(ctx context.Context) error {
	logger := a.logger.With("run_id", uuid.NewString())
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("App.Run method started.")

	session, err := builder.Build(ctx, a.model, a.reg)
	if err != nil {
		return fmt.Errorf("failed to build measurement session: %w", err)
	}
	logger.Debug("Session built.", "measurements", len(session.Measurements))

	if len(session.Measurements) == 0 {
		logger.Warn("No measurements found in configuration, nothing to compile.")
		return nil
	}

	for _, m := range session.Measurements {
		res, err := compiler.Compile(ctx, m)
		if err != nil {
			return fmt.Errorf("compiling measurement %q: %w", m.Name(), err)
		}
		if err := a.writeResult(m.Name(), res); err != nil {
			return err
		}
		logger.Info("Measurement compiled.",
			"measurement", m.Name(),
			"channels", len(res.Channels),
			"sweep_size", m.SweepSize(),
			"warnings", len(res.Warnings),
		)
	}

	logger.Debug("App.Run method finished.")
	return nil
}

func (a *App) writeResult(name string, res *compiler.Result) error {
	if a.cfg.OutputDir == "" {
		_, err := res.WriteTo(a.outW)
		return err
	}
	path := filepath.Join(a.cfg.OutputDir, name+".qua")
	if err := os.WriteFile(path, []byte(res.String()), 0o644); err != nil {
		return fmt.Errorf("writing program file %s: %w", path, err)
	}
	return nil
}
