package pipeline

import "sort"

// Metrics summarises the highlighted publications.
type Metrics struct {
	Papers    int
	Citations int
	HIndex    int
	H10Index  int
}

// ComputeMetrics counts every highlighted record as a paper. Citation
// totals and indices only see records with a known citation count.
func ComputeMetrics(recs []Record) Metrics {
	var (
		m      Metrics
		counts []int
	)
	for _, r := range recs {
		if !r.Highlighted {
			continue
		}
		m.Papers++
		if r.Publication.HasCitations {
			m.Citations += r.Publication.Citations
			counts = append(counts, r.Publication.Citations)
		}
	}

	sort.Sort(sort.Reverse(sort.IntSlice(counts)))
	for i, c := range counts {
		if c > i {
			m.HIndex++
		}
		if c >= 10 {
			m.H10Index++
		}
	}
	return m
}

// Highlighted returns the highlighted records in their original order.
func Highlighted(recs []Record) []Record {
	var out []Record
	for _, r := range recs {
		if r.Highlighted {
			out = append(out, r)
		}
	}
	return out
}
