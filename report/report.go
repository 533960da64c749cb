// Package report renders clustering results for the command line.
//
// The format is one line for the cost followed by one line per center:
//
//	Compute Cost: 1.3683333333333358
//	Cluster Center 0: [0.16666666666666666,0.16666666666666666,0.08333333333333333]
//	Cluster Center 1: [19.799999999999997,20.066666666666666,19.766666666666666]
package report

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"
)

// Write prints the cost and the centers to w.
func Write(w io.Writer, cost float64, centers [][]float64) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("Compute Cost: ")
	bw.WriteString(FormatFloat(cost))
	bw.WriteByte('\n')
	for i, c := range centers {
		bw.WriteString("Cluster Center ")
		bw.WriteString(strconv.Itoa(i))
		bw.WriteString(": ")
		bw.WriteString(FormatVector(c))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// FormatVector renders v as "[c0,c1,...]".
func FormatVector(v []float64) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, x := range v {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(FormatFloat(x))
	}
	sb.WriteByte(']')
	return sb.String()
}

// FormatFloat returns the shortest decimal that round-trips to v.
// Magnitudes in [1e-3, 1e7) use plain notation and always carry a
// fractional part ("20.0"); others use scientific notation ("1.0E-4").
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}

	abs := math.Abs(v)
	if abs == 0 || (abs >= 1e-3 && abs < 1e7) {
		s := strconv.FormatFloat(v, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	}

	s := strconv.FormatFloat(v, 'E', -1, 64)
	mant, exp, _ := strings.Cut(s, "E")
	if !strings.Contains(mant, ".") {
		mant += ".0"
	}
	n, _ := strconv.Atoi(exp)
	return mant + "E" + strconv.Itoa(n)
}
