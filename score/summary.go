package score

// SectionScore is the aggregate percentage of one section.
type SectionScore struct {
	Key        string
	Percentage float64
}

// Summary aggregates scores across sections for the summary line and the
// text export.
type Summary struct {
	Total      int
	Max        int
	Overall    float64
	Sections   []SectionScore
	Weaknesses []string
	Strengths  []string
}

// Summarize totals every item of the given sections. NotAcquired items are
// weaknesses and Acquired items strengths, in document order.
func Summarize(sections ...Section) Summary {
	var s Summary
	for _, sec := range sections {
		total, max := 0, 0
		for _, d := range sec.Domains {
			for _, it := range d.Items {
				total += int(it.Value)
				max += 2
				switch it.Value {
				case NotAcquired:
					s.Weaknesses = append(s.Weaknesses, it.Label)
				case Acquired:
					s.Strengths = append(s.Strengths, it.Label)
				}
			}
		}
		s.Total += total
		s.Max += max
		s.Sections = append(s.Sections, SectionScore{Key: sec.Key, Percentage: ratio(total, max)})
	}
	s.Overall = ratio(s.Total, s.Max)
	return s
}

func ratio(total, max int) float64 {
	if max == 0 {
		return 0
	}
	return float64(total) / float64(max) * 100
}
