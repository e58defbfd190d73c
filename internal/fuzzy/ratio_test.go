// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fuzzy

import (
	"math"
	"testing"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "manipulation", "manipulation", 1.0},
		{"both empty", "", "", 1.0},
		{"one empty", "robot", "", 0.0},
		{"disjoint", "abc", "xyz", 0.0},
		{"plural", "survey", "surveys", 2.0 * 6 / 13},
		{"near miss", "abcd", "bcd", 2.0 * 3 / 7},
		{"transposed", "ab", "ba", 0.5},
		{"robot robotic", "robot", "robotic", 2.0 * 5 / 12},
		{"unicode", "机器人", "机器人学", 2.0 * 3 / 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Ratio(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Ratio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestRatioSymmetricOnEqualLengths(t *testing.T) {
	// The matching-block total is order-dependent in general, but the
	// ratio must stay within [0,1] and equal strings must score 1.0
	// regardless of argument order.
	pairs := [][2]string{
		{"locomotion", "locomotive"},
		{"navigation", "navigating"},
	}
	for _, p := range pairs {
		ab := Ratio(p[0], p[1])
		ba := Ratio(p[1], p[0])
		if ab < 0 || ab > 1 || ba < 0 || ba > 1 {
			t.Errorf("Ratio out of range: %v / %v", ab, ba)
		}
	}
}
