package media

import (
	"fmt"
	"strconv"
	"strings"
)

// Chain is an ordered sequence of selection expressions handed to the
// external extractor, which commits to the first expression that resolves
// to a playable result.
type Chain []string

// Expr renders the chain in the extractor's fallback syntax.
func (c Chain) Expr() string {
	return strings.Join(c, "/")
}

// defaultHeight is used when a resolution label cannot be parsed.
const defaultHeight = 720

// SelectionForFormatID builds the fallback chain for a concrete ladder
// entry: pair the chosen stream with the best m4a audio, then any best
// audio, then take it alone. The selected visual quality is honored even
// when no audio can be paired.
func SelectionForFormatID(formatID string) Chain {
	return Chain{
		fmt.Sprintf("%s+bestaudio[ext=m4a]", formatID),
		fmt.Sprintf("%s+bestaudio", formatID),
		formatID,
	}
}

// SelectionForResolution builds the height-based chain, ranked strictest
// first and ending in an unconstrained last resort.
func SelectionForResolution(label string) Chain {
	h := ParseHeight(label)
	return Chain{
		fmt.Sprintf("bestvideo[height<=%d][ext=mp4]+bestaudio[ext=m4a]", h),
		fmt.Sprintf("bestvideo[height<=%d]+bestaudio", h),
		fmt.Sprintf("best[height<=%d][ext=mp4]", h),
		fmt.Sprintf("best[height<=%d]", h),
		"best",
	}
}

// SelectionBestAudio selects the best available audio unconditionally; the
// extractor's post-processing converts it to the fixed audio target.
func SelectionBestAudio() Chain {
	return Chain{"bestaudio", "best"}
}

// ParseHeight extracts the pixel height from a label like "1080p".
func ParseHeight(label string) int {
	trimmed := strings.TrimSuffix(strings.TrimSpace(label), "p")
	h, err := strconv.Atoi(trimmed)
	if err != nil || h <= 0 {
		return defaultHeight
	}
	return h
}
