package cache

import (
	"testing"
)

func TestStatistics_Rates(t *testing.T) {
	tests := []struct {
		name         string
		hits, misses uint64
		wantHitRate  float64
		wantMissRate float64
	}{
		{
			name:         "no accesses",
			wantHitRate:  0,
			wantMissRate: 0,
		},
		{
			name:         "even split",
			hits:         1,
			misses:       1,
			wantHitRate:  0.5,
			wantMissRate: 0.5,
		},
		{
			name:         "all hits",
			hits:         4,
			wantHitRate:  1,
			wantMissRate: 0,
		},
		{
			name:         "all misses",
			misses:       3,
			wantHitRate:  0,
			wantMissRate: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Statistics{Hits: tt.hits, Misses: tt.misses}
			if got := s.HitRate(); got != tt.wantHitRate {
				t.Errorf("HitRate() = %v, want %v", got, tt.wantHitRate)
			}
			if got := s.MissRate(); got != tt.wantMissRate {
				t.Errorf("MissRate() = %v, want %v", got, tt.wantMissRate)
			}
		})
	}
}
