package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/san-kum/ntree/internal/partition"
)

// WriteCSV writes one row per object: x0..x{D-1},radius, with a header.
func WriteCSV(w io.Writer, objs partition.ObjectSet) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, objs.Dim()+1)
	for a := 0; a < objs.Dim(); a++ {
		header = append(header, fmt.Sprintf("x%d", a))
	}
	header = append(header, "radius")
	if err := cw.Write(header); err != nil {
		return err
	}

	for i, p := range objs.Positions {
		row := make([]string, 0, len(p)+1)
		for _, v := range p {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		row = append(row, strconv.FormatFloat(objs.Radii[i], 'g', -1, 64))
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses rows of coordinates followed by a radius. A first row that
// does not parse as numbers is treated as a header.
func ReadCSV(r io.Reader) (partition.ObjectSet, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return partition.ObjectSet{}, err
	}

	var objs partition.ObjectSet
	for n, record := range records {
		if len(record) < 2 {
			return partition.ObjectSet{}, fmt.Errorf("dataset: line %d: want at least one coordinate and a radius", n+1)
		}
		vals := make([]float64, len(record))
		var parseErr error
		for j, field := range record {
			vals[j], parseErr = strconv.ParseFloat(field, 64)
			if parseErr != nil {
				break
			}
		}
		if parseErr != nil {
			if n == 0 {
				continue
			}
			return partition.ObjectSet{}, fmt.Errorf("dataset: line %d: %w", n+1, parseErr)
		}
		objs.Positions = append(objs.Positions, vals[:len(vals)-1])
		objs.Radii = append(objs.Radii, vals[len(vals)-1])
	}
	return objs, nil
}

func LoadCSV(path string) (partition.ObjectSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return partition.ObjectSet{}, err
	}
	defer f.Close()
	return ReadCSV(f)
}

func SaveCSV(path string, objs partition.ObjectSet) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, objs); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
