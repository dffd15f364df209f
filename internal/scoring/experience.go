package scoring

import (
	"fmt"
	"sort"
	"time"

	"jobfit/internal/errors"
	"jobfit/internal/types"
)

const monthLayout = "2006-01"

type period struct {
	start time.Time
	end   time.Time
}

// TotalExperienceMonths sums the candidate's work history in whole months.
// Overlapping or adjacent periods are merged first so concurrent roles are
// not double-counted. Entries with an empty End are closed at the reference
// date.
func TotalExperienceMonths(entries []types.ExperienceEntry, reference time.Time) (int, error) {
	periods := make([]period, 0, len(entries))
	for _, e := range entries {
		start, err := time.Parse(monthLayout, e.Start)
		if err != nil {
			return 0, errors.NewExtractionError(errors.ErrCodeExtractionFailed,
				fmt.Sprintf("experience entry %q has unparseable start %q", e.Title, e.Start), err)
		}
		end := reference
		if e.End != "" {
			end, err = time.Parse(monthLayout, e.End)
			if err != nil {
				return 0, errors.NewExtractionError(errors.ErrCodeExtractionFailed,
					fmt.Sprintf("experience entry %q has unparseable end %q", e.Title, e.End), err)
			}
		}
		if end.Before(start) {
			return 0, errors.NewExtractionError(errors.ErrCodeExtractionFailed,
				fmt.Sprintf("experience entry %q ends before it starts", e.Title), nil)
		}
		periods = append(periods, period{start: start, end: end})
	}

	if len(periods) == 0 {
		return 0, nil
	}

	sort.Slice(periods, func(i, j int) bool { return periods[i].start.Before(periods[j].start) })

	merged := []period{periods[0]}
	for _, p := range periods[1:] {
		last := &merged[len(merged)-1]
		if !p.start.After(last.end) {
			if p.end.After(last.end) {
				last.end = p.end
			}
			continue
		}
		merged = append(merged, p)
	}

	total := 0
	for _, p := range merged {
		total += monthsBetween(p.start, p.end)
	}
	return total, nil
}

func monthsBetween(start, end time.Time) int {
	return (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
}

// experienceScore gives full credit at or above the job's minimum, no matter
// how the minimum relates to ExperienceCapMonths, and proportional credit
// below it. The cap applies only inside the proportional branch: when a job
// asks for more months than the cap, months beyond the cap stop raising the
// ratio.
func (c Config) experienceScore(months, minMonths int) float64 {
	if minMonths <= 0 {
		return 1.0
	}
	if months >= minMonths {
		return 1.0
	}
	if months > c.ExperienceCapMonths {
		months = c.ExperienceCapMonths
	}
	return float64(months) / float64(minMonths)
}
