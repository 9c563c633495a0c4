package shapes

import (
	"bufio"
	"fmt"
	"io"
)

// WriteReport prints the per-kind counters, one "kind: n" line each, in the
// order triangle, square, rectangle, circle.
func WriteReport(w io.Writer, c Counts) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "The Shape counts are:")
	for _, k := range Kinds() {
		fmt.Fprintf(bw, "%s: %d\n", k, c[k])
	}
	return bw.Flush()
}
