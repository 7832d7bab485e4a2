// Package convert invokes an external office converter to produce the
// page-document representation the rewriter operates on. Candidates are
// tried in priority order, sequentially; the first success wins and every
// failure is kept for diagnostics. No racing, no retries within one call.
package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/Loran-38/anonyjud/internal/logger"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ErrChainExhausted wraps the per-converter failures when no candidate
// produced an output. It is a hard failure for the conversion step only.
var ErrChainExhausted = errors.New("all converters failed")

// Converter is one named conversion strategy.
type Converter interface {
	Name() string
	// Convert turns inputPath into a PDF inside outputDir and returns the
	// produced file's path.
	Convert(ctx context.Context, inputPath, outputDir string) (string, error)
}

// Chain tries converters in order until one succeeds.
type Chain struct {
	converters []Converter
	timeout    time.Duration
	logger     *logger.Logger
}

// NewChain builds a chain from command names. Known commands get their
// specific invocation; unknown names are skipped.
func NewChain(commands []string, timeout time.Duration, log *logger.Logger) *Chain {
	if log == nil {
		log = logger.Nop()
	}
	c := &Chain{timeout: timeout, logger: log.WithPhase("convert")}
	for _, name := range commands {
		switch name {
		case "soffice", "libreoffice":
			c.converters = append(c.converters, &officeConverter{command: name})
		case "unoconv":
			c.converters = append(c.converters, &unoconvConverter{})
		default:
			c.logger.Warn("unknown converter skipped", zap.String("command", name))
		}
	}
	return c
}

// Converters returns the configured strategies in priority order.
func (c *Chain) Converters() []Converter {
	return c.converters
}

// Convert runs the chain. Each candidate gets its own bounded context;
// cancellation of ctx stops the whole chain.
func (c *Chain) Convert(ctx context.Context, inputPath, outputDir string) (string, error) {
	var failures error
	for _, conv := range c.converters {
		attemptCtx := ctx
		var cancel context.CancelFunc
		if c.timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, c.timeout)
		}
		out, err := conv.Convert(attemptCtx, inputPath, outputDir)
		if cancel != nil {
			cancel()
		}
		if err == nil {
			c.logger.Info("conversion succeeded",
				zap.String("converter", conv.Name()),
				zap.String("output", out),
			)
			return out, nil
		}
		c.logger.Warn("converter failed",
			zap.String("converter", conv.Name()),
			zap.Error(err),
		)
		failures = multierr.Append(failures, fmt.Errorf("%s: %w", conv.Name(), err))
		if ctx.Err() != nil {
			break
		}
	}
	return "", fmt.Errorf("%w: %w", ErrChainExhausted, failures)
}

// officeConverter shells out to LibreOffice (soffice or the libreoffice
// wrapper script).
type officeConverter struct {
	command string
}

func (o *officeConverter) Name() string { return o.command }

func (o *officeConverter) Convert(ctx context.Context, inputPath, outputDir string) (string, error) {
	cmd := exec.CommandContext(ctx, o.command,
		"--headless", "--convert-to", "pdf", "--outdir", outputDir, inputPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("%s: %s", err, strings.TrimSpace(string(out)))
	}
	return expectOutput(inputPath, outputDir)
}

// unoconvConverter shells out to unoconv.
type unoconvConverter struct{}

func (u *unoconvConverter) Name() string { return "unoconv" }

func (u *unoconvConverter) Convert(ctx context.Context, inputPath, outputDir string) (string, error) {
	target := pdfPath(inputPath, outputDir)
	cmd := exec.CommandContext(ctx, "unoconv", "-f", "pdf", "-o", target, inputPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("%s: %s", err, strings.TrimSpace(string(out)))
	}
	return expectOutput(inputPath, outputDir)
}

// pdfPath is the conventional output location for inputPath in outputDir.
func pdfPath(inputPath, outputDir string) string {
	base := filepath.Base(inputPath)
	base = strings.TrimSuffix(base, filepath.Ext(base)) + ".pdf"
	return filepath.Join(outputDir, base)
}

// expectOutput verifies the converter actually produced the file; some
// tools exit zero after writing nothing.
func expectOutput(inputPath, outputDir string) (string, error) {
	target := pdfPath(inputPath, outputDir)
	info, err := os.Stat(target)
	if err != nil {
		return "", fmt.Errorf("expected output missing: %w", err)
	}
	if info.Size() == 0 {
		return "", fmt.Errorf("converter produced empty file %s", target)
	}
	return target, nil
}
