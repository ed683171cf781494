package formatter

import (
	"fmt"
	"strings"
)

// partialBlocks holds the left-aligned eighth blocks, index = eighths filled.
var partialBlocks = []string{"", "▏", "▎", "▍", "▌", "▋", "▊", "▉"}

const (
	fullBlock  = "█"
	emptyBlock = "░"
)

// RenderProgress draws pct (clamped to 0-100) as a bar of width cells with
// eighth-cell resolution, followed by the rounded percentage: [█▍░░]  35%.
// Completion colors the bar.
func RenderProgress(pct float64, width int) string {
	pct = min(max(pct, 0), 100)
	width = max(width, 2)

	eighths := int(pct / 100 * float64(width*8))
	full, rem := eighths/8, eighths%8

	var bar strings.Builder
	bar.WriteString(strings.Repeat(fullBlock, full))
	cells := full
	if rem > 0 {
		bar.WriteString(partialBlocks[rem])
		cells++
	}
	bar.WriteString(strings.Repeat(emptyBlock, width-cells))

	return fmt.Sprintf("[%s] %3.0f%%", CompletionColor(pct).Render(bar.String()), pct)
}
