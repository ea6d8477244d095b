// Package convert turns office documents into PDF bytes using an external
// LibreOffice process.
package convert

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"time"
)

// DefaultTimeout bounds one conversion subprocess.
const DefaultTimeout = 30 * time.Second

// outPathPattern locates the produced file in LibreOffice's stdout.
var outPathPattern = regexp.MustCompile(`-> (.*?) using filter`)

// Error is a conversion failure carrying the raw subprocess output for
// operator troubleshooting.
type Error struct {
	Output string
	cause  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("document conversion failed: %v", e.cause)
	}
	return "document conversion failed: converter output not parseable"
}

// Unwrap returns the underlying subprocess error, if any.
func (e *Error) Unwrap() error { return e.cause }

// LibreOffice converts documents by shelling out to a headless LibreOffice.
type LibreOffice struct {
	binary  string
	timeout time.Duration
	logger  *slog.Logger
}

// NewLibreOffice creates a converter. Empty binary falls back to
// "libreoffice"; zero timeout falls back to DefaultTimeout.
func NewLibreOffice(binary string, timeout time.Duration, logger *slog.Logger) LibreOffice {
	if binary == "" {
		binary = "libreoffice"
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return LibreOffice{binary: binary, timeout: timeout, logger: logger}
}

// ToPDF converts source bytes of the given format tag (e.g. "docx") to PDF.
// The subprocess is killed when the timeout elapses; the failure is returned
// to the caller rather than retried.
func (c LibreOffice) ToPDF(ctx context.Context, source []byte, format string) ([]byte, error) {
	workDir, err := os.MkdirTemp("", "docsight-convert-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	srcPath := filepath.Join(workDir, "source."+format)
	if err := os.WriteFile(srcPath, source, 0o600); err != nil {
		return nil, fmt.Errorf("write source file: %w", err)
	}

	outDir := filepath.Join(workDir, "out")
	if err := os.Mkdir(outDir, 0o700); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.binary,
		"--headless",
		"--convert-to", "pdf",
		"--outdir", outDir,
		srcPath,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	c.logger.Debug("libreoffice finished",
		"format", format,
		"duration", time.Since(start),
		"error", runErr,
	)

	output := stdout.String() + stderr.String()
	if runErr != nil {
		return nil, &Error{Output: output, cause: runErr}
	}

	outPath, ok := parseOutputPath(stdout.String())
	if !ok {
		return nil, &Error{Output: output}
	}

	pdf, err := os.ReadFile(outPath)
	if err != nil {
		return nil, &Error{Output: output, cause: err}
	}
	return pdf, nil
}

// parseOutputPath extracts the produced file path from converter stdout.
func parseOutputPath(stdout string) (string, bool) {
	m := outPathPattern.FindStringSubmatch(stdout)
	if m == nil {
		return "", false
	}
	return m[1], true
}
