package main

import (
	"strconv"

	"github.com/Feresey/dumptrim/filter"
)

type CSVConverter struct{}

func (w *CSVConverter) ConvertDecisions(decisions []filter.Decision) [][]string {
	res := make([][]string, 0, len(decisions)+1)
	res = append(res, []string{"table", "rows", "verdict"})

	for _, d := range decisions {
		res = append(res, []string{
			d.Table.String(),
			strconv.Itoa(d.Rows),
			verdictString(d.Excluded),
		})
	}

	return res
}

func verdictString(excluded bool) string {
	if excluded {
		return "drop"
	}
	return "keep"
}
