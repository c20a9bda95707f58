package upgma

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadDistanceMatrix reads a tabular distance matrix in PHYLIP style from r:
// a header line holding the taxon count n, then one line per taxon with its
// name followed by whitespace-separated distances. Both the square layout
// (n values per line) and the lower-triangular layout (row i carries i
// values, i counted from zero) are accepted; triangular input is mirrored
// into a full symmetric matrix. Returns the taxon names in file order and
// the flat row-major n×n distances, ready for [BuildTree].
func ReadDistanceMatrix(r io.Reader) ([]string, []float64, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	line, lineNo, err := nextLine(scanner, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("upgma: missing taxon count header: %w", err)
	}
	n, err := strconv.Atoi(strings.Fields(line)[0])
	if err != nil || n < 1 {
		return nil, nil, fmt.Errorf("upgma: line %d: invalid taxon count %q", lineNo, strings.TrimSpace(line))
	}

	names := make([]string, n)
	rows := make([][]string, n)
	lineNos := make([]int, n)
	for i := 0; i < n; i++ {
		line, lineNo, err = nextLine(scanner, lineNo)
		if err != nil {
			return nil, nil, fmt.Errorf("upgma: expected %d taxon rows, got %d: %w", n, i, err)
		}
		fields := strings.Fields(line)
		names[i] = fields[0]
		rows[i] = fields[1:]
		lineNos[i] = lineNo
	}

	// The first row disambiguates the layout: n distances means square,
	// none means lower-triangular.
	square := len(rows[0]) == n

	distances := make([]float64, n*n)
	for i := 0; i < n; i++ {
		want := i
		if square {
			want = n
		}
		if len(rows[i]) != want {
			return nil, nil, fmt.Errorf("upgma: line %d: row %q has %d values, want %d", lineNos[i], names[i], len(rows[i]), want)
		}
		for j, s := range rows[i] {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("upgma: line %d: bad distance %q for taxon %q", lineNos[i], s, names[i])
			}
			distances[i*n+j] = v
			if !square {
				distances[j*n+i] = v
			}
		}
	}

	return names, distances, nil
}

// nextLine returns the next non-blank line and its 1-based line number.
func nextLine(scanner *bufio.Scanner, lineNo int) (string, int, error) {
	for scanner.Scan() {
		lineNo++
		if line := scanner.Text(); strings.TrimSpace(line) != "" {
			return line, lineNo, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", lineNo, err
	}
	return "", lineNo, io.ErrUnexpectedEOF
}
