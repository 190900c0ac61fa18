package cache

// Statistics is a point-in-time snapshot of cache counters and gauges.
// Hits, Misses, Evictions and Expirations accumulate since creation or the
// last ResetStats; ItemCount and SizeBytes reflect the live store.
type Statistics struct {
	Hits        uint64 `json:"hits"`
	Misses      uint64 `json:"misses"`
	Evictions   uint64 `json:"evictions"`
	Expirations uint64 `json:"expirations"`
	ItemCount   int    `json:"item_count"`
	SizeBytes   int64  `json:"size_bytes"`
}

// HitRate returns hits/(hits+misses), or 0 when no accesses are recorded.
// Rates are computed on demand, never stored.
func (s Statistics) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// MissRate returns 1 - HitRate, or 0 when no accesses are recorded.
func (s Statistics) MissRate() float64 {
	if s.Hits+s.Misses == 0 {
		return 0
	}
	return 1 - s.HitRate()
}
