package media

// typicalBitrateKbps holds approximate video bitrates for the standard
// resolution tiers, used when the catalog reports no bitrate of its own.
var typicalBitrateKbps = map[int]float64{
	4320: 80000,
	2160: 16000,
	1440: 8000,
	1080: 4000,
	720:  2500,
	480:  1000,
	360:  500,
	240:  250,
}

// EstimateSize approximates the byte size of an encoding from its duration
// and bitrate. When bitrateKbps is zero the typical-bitrate table is
// consulted for the given height. Returns nil when no estimate is possible
// (unknown duration, or no bitrate and no table entry) rather than a
// misleading zero.
func EstimateSize(durationSeconds int, height int, bitrateKbps float64) *int64 {
	if durationSeconds <= 0 {
		return nil
	}
	kbps := bitrateKbps
	if kbps == 0 {
		kbps = typicalBitrateKbps[height]
	}
	if kbps == 0 {
		return nil
	}
	size := int64(float64(durationSeconds) * kbps * 1000 / 8)
	return &size
}
