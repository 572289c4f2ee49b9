// Package snapshot serializes fetched portfolio state to timestamped
// CSV files, one file per entity type per run.
package snapshot

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"kitefolio/internal/domain"
	"kitefolio/internal/metrics"
)

var holdingsHeader = []string{
	"tradingsymbol", "exchange", "quantity", "avg_price", "last_price",
	"invested", "value", "pnl", "pnl_pct", "day_change",
}

var positionsHeader = []string{
	"product", "tradingsymbol", "exchange", "qty", "avg_price", "ltp", "m2m",
}

// Writer persists CSV snapshots under a fixed directory.
type Writer struct {
	dir string
}

// NewWriter builds a Writer rooted at dir. The directory is created on
// first write, not here.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Write serializes all non-empty entity sequences. File names embed the
// capture stamp, so runs never touch each other's files; within one run
// an existing file is an error rather than silently overwritten. Returns
// the paths written.
func (w *Writer) Write(snap *domain.Snapshot, rep metrics.Report) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create snapshot dir")
	}

	stamp := snap.Stamp()
	var written []string

	if len(rep.Holdings) > 0 {
		path := filepath.Join(w.dir, fmt.Sprintf("holdings_%s.csv", stamp))
		if err := writeFile(path, holdingsHeader, holdingRows(rep.Holdings)); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	for _, entity := range []struct {
		name      string
		positions []domain.Position
	}{
		{"positions_day", snap.DayPositions},
		{"positions_net", snap.NetPositions},
	} {
		if len(entity.positions) == 0 {
			continue
		}
		path := filepath.Join(w.dir, fmt.Sprintf("%s_%s.csv", entity.name, stamp))
		if err := writeFile(path, positionsHeader, positionRows(entity.positions)); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	return written, nil
}

func holdingRows(views []metrics.HoldingView) [][]string {
	rows := make([][]string, 0, len(views))
	for _, v := range views {
		rows = append(rows, []string{
			v.Symbol,
			v.Exchange,
			v.Quantity.String(),
			v.AvgPrice.StringFixed(2),
			v.LastPrice.StringFixed(2),
			v.Invested.StringFixed(2),
			v.Value.StringFixed(2),
			v.PnL.StringFixed(2),
			v.PnLPct.StringFixed(2),
			v.DayChange.StringFixed(2),
		})
	}
	return rows
}

func positionRows(positions []domain.Position) [][]string {
	rows := make([][]string, 0, len(positions))
	for _, p := range positions {
		rows = append(rows, []string{
			p.Product,
			p.Symbol,
			p.Exchange,
			p.Quantity.String(),
			p.AvgPrice.StringFixed(2),
			p.LastPrice.StringFixed(2),
			p.M2M.StringFixed(2),
		})
	}
	return rows
}

func writeFile(path string, header []string, rows [][]string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return errors.Wrapf(err, "write header to %s", path)
	}
	if err := cw.WriteAll(rows); err != nil {
		return errors.Wrapf(err, "write rows to %s", path)
	}
	cw.Flush()
	return errors.Wrapf(cw.Error(), "flush %s", path)
}
