package media

import "fmt"

// Descriptor is one entry in the external catalog describing a single
// available encoding. Zero values mean the field was absent upstream.
type Descriptor struct {
	FormatID       string
	Height         int
	VideoCodec     string
	Bitrate        float64 // average bitrate in kbps
	Filesize       int64
	FilesizeApprox int64
}

// reportedSize returns the exact size if present, else the approximate one,
// else nil.
func (d Descriptor) reportedSize() *int64 {
	if d.Filesize > 0 {
		size := d.Filesize
		return &size
	}
	if d.FilesizeApprox > 0 {
		size := d.FilesizeApprox
		return &size
	}
	return nil
}

// Tier is one rung of the resolution ladder surfaced to callers. An empty
// FormatID marks a synthetic tier: no native stream exists at exactly that
// height and selection falls back to height-based matching.
type Tier struct {
	Label     string `json:"label"`
	FormatID  string `json:"format_id"`
	Filesize  *int64 `json:"filesize"`
	Estimated bool   `json:"estimated"`
}

// standardHeights is the fixed descending tier list, 8K down to 240p.
var standardHeights = []int{4320, 2160, 1440, 1080, 720, 480, 360, 240}

// BestByHeight collapses a raw, unordered format catalog into the single
// best descriptor per vertical resolution. Audio-only streams (codec "none")
// and streams without a height never appear. For descriptors sharing a
// height the highest bitrate wins; ties keep the first seen.
func BestByHeight(formats []Descriptor) map[int]Descriptor {
	best := make(map[int]Descriptor)
	for _, f := range formats {
		if f.Height == 0 || f.VideoCodec == "" || f.VideoCodec == "none" {
			continue
		}
		current, ok := best[f.Height]
		if !ok || f.Bitrate > current.Bitrate {
			best[f.Height] = f
		}
	}
	return best
}

// BuildLadder combines the normalized catalog with the standard tiers into
// an ordered, deduplicated resolution ladder. Native tiers carry their
// reported size when the catalog had one; everything else is estimated from
// bitrate and duration. Standard tiers below the source's maximum height
// with no native stream become synthetic entries. When no standard tier is
// at or below the maximum height, the single raw best entry is emitted
// instead. An empty catalog yields an empty ladder.
func BuildLadder(best map[int]Descriptor, durationSeconds int) []Tier {
	maxHeight := 0
	for h := range best {
		if h > maxHeight {
			maxHeight = h
		}
	}

	ladder := make([]Tier, 0, len(standardHeights))
	for _, h := range standardHeights {
		if h > maxHeight {
			continue
		}
		if entry, ok := best[h]; ok {
			size := entry.reportedSize()
			estimated := size == nil
			if size == nil {
				size = EstimateSize(durationSeconds, h, entry.Bitrate)
			}
			ladder = append(ladder, Tier{
				Label:     fmt.Sprintf("%dp", h),
				FormatID:  entry.FormatID,
				Filesize:  size,
				Estimated: estimated,
			})
			continue
		}
		// Synthetic tier: size from the typical-bitrate table only.
		ladder = append(ladder, Tier{
			Label:     fmt.Sprintf("%dp", h),
			Estimated: true,
			Filesize:  EstimateSize(durationSeconds, h, 0),
		})
	}

	// Source exposes video but nothing at or above 240p: surface the raw
	// best so a download is still possible.
	if len(ladder) == 0 && len(best) > 0 {
		entry := best[maxHeight]
		ladder = append(ladder, Tier{
			Label:    fmt.Sprintf("%dp", maxHeight),
			FormatID: entry.FormatID,
			Filesize: entry.reportedSize(),
		})
	}

	return ladder
}
