package email

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DevSender writes each message as an HTML file under a local directory
// instead of delivering it. Useful for development and tests.
type DevSender struct {
	outputDir string
	log       *slog.Logger
}

// NewDevSender creates the output directory if needed.
func NewDevSender(outputDir string, log *slog.Logger) (*DevSender, error) {
	if outputDir == "" {
		return nil, fmt.Errorf("%w: missing output directory", ErrInvalidConfig)
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create output dir: %w", ErrInvalidConfig, err)
	}
	return &DevSender{outputDir: outputDir, log: log}, nil
}

// SendEmail implements Sender.
func (s *DevSender) SendEmail(_ context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	name := fmt.Sprintf("%d_%s.html", time.Now().UnixNano(), sanitizeForFilename(params.SendTo))
	path := filepath.Join(s.outputDir, name)

	var b strings.Builder
	fmt.Fprintf(&b, "<!-- To: %s -->\n", params.SendTo)
	fmt.Fprintf(&b, "<!-- Subject: %s -->\n", params.Subject)
	b.WriteString(params.BodyHTML)

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToSendEmail, err)
	}

	s.log.Info("email written to disk",
		slog.String("to", params.SendTo),
		slog.String("subject", params.Subject),
		slog.String("path", path))
	return nil
}

func sanitizeForFilename(addr string) string {
	r := strings.NewReplacer("@", "_at_", ".", "_", "/", "_", "\\", "_")
	return r.Replace(addr)
}
