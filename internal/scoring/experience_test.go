package scoring

import (
	"testing"
	"time"

	"jobfit/internal/types"
)

func TestTotalExperienceMonths(t *testing.T) {
	ref := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		entries   []types.ExperienceEntry
		want      int
		expectErr bool
	}{
		{
			name: "single closed period",
			entries: []types.ExperienceEntry{
				{Title: "Engineer", Start: "2020-01", End: "2022-07"},
			},
			want: 30,
		},
		{
			name: "overlapping roles merged",
			entries: []types.ExperienceEntry{
				{Title: "Engineer", Start: "2020-01", End: "2021-01"},
				{Title: "Consultant", Start: "2020-06", End: "2021-06"},
			},
			want: 17,
		},
		{
			name: "disjoint periods summed",
			entries: []types.ExperienceEntry{
				{Title: "Engineer", Start: "2018-01", End: "2019-01"},
				{Title: "Engineer", Start: "2020-01", End: "2020-07"},
			},
			want: 18,
		},
		{
			name: "open period closed at reference date",
			entries: []types.ExperienceEntry{
				{Title: "Engineer", Start: "2024-06"},
			},
			want: 12,
		},
		{
			name:    "no entries",
			entries: nil,
			want:    0,
		},
		{
			name: "unparseable start",
			entries: []types.ExperienceEntry{
				{Title: "Engineer", Start: "January 2020", End: "2021-01"},
			},
			expectErr: true,
		},
		{
			name: "end before start",
			entries: []types.ExperienceEntry{
				{Title: "Engineer", Start: "2022-01", End: "2021-01"},
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TotalExperienceMonths(tt.entries, ref)
			if tt.expectErr {
				if err == nil {
					t.Fatalf("expected error, got %d months", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %d months, got %d", tt.want, got)
			}
		})
	}
}

func TestExperienceScore(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name      string
		months    int
		minMonths int
		want      float64
	}{
		{"above minimum earns full credit", 30, 24, 1.0},
		{"exactly minimum earns full credit", 24, 24, 1.0},
		{"half the minimum earns half credit", 12, 24, 0.5},
		{"no requirement earns full credit", 0, 0, 1.0},
		{"minimum above cap still earns full credit when met", 100, 72, 1.0},
		{"cap limits partial credit when minimum exceeds it", 65, 90, float64(60) / 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cfg.experienceScore(tt.months, tt.minMonths); got != tt.want {
				t.Errorf("experienceScore(%d, %d) = %f, want %f", tt.months, tt.minMonths, got, tt.want)
			}
		})
	}
}
