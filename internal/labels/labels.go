// Package labels renders the QR codes printed on the physical clue props.
// Each label encodes the clue's scan URL.
package labels

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/door66/lost-souls/internal/content"
)

// LabelSize is the rendered QR code edge in pixels.
const LabelSize = 256

// Generator renders clue QR labels.
type Generator struct {
	baseURL string
	logger  *zap.Logger
}

// NewGenerator creates a label generator. baseURL is the public site root
// the labels point at.
func NewGenerator(baseURL string, logger *zap.Logger) *Generator {
	return &Generator{
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// ClueURL returns the scan URL encoded into a clue's label.
func (g *Generator) ClueURL(clueID string) string {
	return fmt.Sprintf("%s/clues/%s", g.baseURL, clueID)
}

// Render returns the PNG bytes of one clue's QR label.
func (g *Generator) Render(clueID string) ([]byte, error) {
	png, err := qrcode.Encode(g.ClueURL(clueID), qrcode.Medium, LabelSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code image: %w", err)
	}
	return png, nil
}

// WriteAll renders a label file per clue into dir, for printing the prop
// sheets. Returns the number of labels written.
func (g *Generator) WriteAll(library *content.Library, dir string) (int, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create QR code directory: %w", err)
	}

	ids := make([]string, 0, len(library.Clues))
	for id := range library.Clues {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		path := filepath.Join(dir, id+".png")
		if err := qrcode.WriteFile(g.ClueURL(id), qrcode.Medium, LabelSize, path); err != nil {
			return 0, fmt.Errorf("failed to write QR code for clue %s: %w", id, err)
		}
	}

	g.logger.Info("QR labels written",
		zap.Int("count", len(ids)),
		zap.String("dir", dir))

	return len(ids), nil
}
