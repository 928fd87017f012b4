package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ulikunitz/xz"
)

var csvHeader = []string{"index", "open", "high", "low", "close"}

// WriteCSV writes candles as index,open,high,low,close rows with a header.
func WriteCSV(w io.Writer, candles []Candle) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for i, c := range candles {
		row := []string{
			strconv.Itoa(i),
			price(c.Open),
			price(c.High),
			price(c.Low),
			price(c.Close),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses candles written by WriteCSV. The header row is optional and
// the index column is ignored: candles keep the order of the rows.
func ReadCSV(r io.Reader) ([]Candle, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var out []Candle
	line := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		line++
		if len(row) == 0 {
			continue
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(row[0]), "index") {
			continue
		}
		if len(row) < 5 {
			return nil, fmt.Errorf("line %d: need 5 columns (index,open,high,low,close), got %d", line, len(row))
		}

		var vals [4]float64
		for i := range vals {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[i+1]), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad %s %q: %w", line, csvHeader[i+1], row[i+1], err)
			}
			vals[i] = v
		}
		c := Candle{Open: vals[0], High: vals[1], Low: vals[2], Close: vals[3]}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, c)
	}
}

func price(x float64) string {
	return strconv.FormatFloat(x, 'f', 2, 64)
}

// LoadCSV reads candles from path. Files ending in .xz are decompressed
// on the fly.
func LoadCSV(path string) ([]Candle, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	var r io.Reader = fh
	if strings.HasSuffix(path, ".xz") {
		xr, err := xz.NewReader(fh)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		r = xr
	}

	candles, err := ReadCSV(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return candles, nil
}
