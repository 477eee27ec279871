// Package export produces trimmed spreadsheet snapshots of scenario data for
// use as test fixtures.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/tealeg/xlsx"

	"github.com/OFR-IIASA/message-ix-models/internal/config"
	"github.com/OFR-IIASA/message-ix-models/internal/platform"
)

// Source scenario and filters for the exported fixture: the lifetime
// reduction of coal_ppl in the R11_AFR and R11_CPA regions.
const (
	SrcModel    = "ENGAGE_SSP2_v4.1.7"
	SrcScenario = "baseline"
	Technology  = "coal_ppl"
)

// Nodes are the regions kept in the exported data.
var Nodes = []string{"R11_AFR", "R11_CPA"}

// removeSheets lists name fragments of sheets that are not required for
// testing purposes. Any sheet whose name contains one of these is dropped.
var removeSheets = []string{
	"land",
	"mapping_macro_sector",
	"sector",
	"MERtoPPP",
	"aeei",
	"cost_MESSAGE",
	"demand",
	"demand_MESSAGE",
	"depr",
	"esub",
	"grow",
	"historical_gdp",
	"kgdp",
	"lotol",
	"prfconst",
	"kpvs",
	"lakl",
	"price_MESSAGE",
	"gdp_calibrate",
}

var parHeader = []string{"node", "technology", "year", "value", "unit"}

// TestData exports a filtered subset of the source scenario to an xlsx file
// under the context's local data directory and returns the file path.
//
// The export runs in two passes. First every parameter of the scenario is
// dumped, filtered by technology. Then the workbook is re-read and rewritten
// in place: excluded sheets are dropped, the ix_type_mapping sheet loses rows
// naming excluded items, and parameter sheets lose rows whose node column is
// outside the target node set.
func TestData(ctx context.Context, c *config.Context) (string, error) {
	mp, err := c.GetPlatform()
	if err != nil {
		return "", fmt.Errorf("export test data: %w", err)
	}

	scen, err := mp.Scenario(ctx, SrcModel, SrcScenario)
	if err != nil {
		return "", fmt.Errorf("export test data: %w", err)
	}

	dest := filepath.Join(c.LocalData,
		fmt.Sprintf("%s_%s_%s.xlsx", SrcModel, SrcScenario, Technology))

	if err := toExcel(ctx, scen, dest); err != nil {
		return "", fmt.Errorf("export test data: %w", err)
	}
	if err := filterWorkbook(dest); err != nil {
		return "", fmt.Errorf("export test data: %w", err)
	}

	slog.Info("exported test data", "path", dest)
	return dest, nil
}

// toExcel dumps every parameter of the scenario to one sheet each, keeping
// only rows for the target technology (rows without a technology dimension
// are kept). An ix_type_mapping sheet lists every exported item.
func toExcel(ctx context.Context, scen *platform.Scenario, path string) error {
	names, err := scen.ParList(ctx)
	if err != nil {
		return err
	}

	file := xlsx.NewFile()

	mapping, err := file.AddSheet("ix_type_mapping")
	if err != nil {
		return err
	}
	header := mapping.AddRow()
	header.AddCell().SetString("item")
	header.AddCell().SetString("ix_type")

	for _, name := range names {
		row := mapping.AddRow()
		row.AddCell().SetString(name)
		row.AddCell().SetString("par")

		recs, err := scen.Par(ctx, name)
		if err != nil {
			return err
		}

		sheet, err := file.AddSheet(name)
		if err != nil {
			return err
		}
		hr := sheet.AddRow()
		for _, col := range parHeader {
			hr.AddCell().SetString(col)
		}
		for _, rec := range recs {
			if rec.Technology != "" && rec.Technology != Technology {
				continue
			}
			r := sheet.AddRow()
			r.AddCell().SetString(rec.Node)
			r.AddCell().SetString(rec.Technology)
			r.AddCell().SetInt(rec.Year)
			r.AddCell().SetFloat(rec.Value)
			r.AddCell().SetString(rec.Unit)
		}
	}

	return file.Save(path)
}

// filterWorkbook rewrites the workbook at path, dropping excluded sheets and
// rows as described on TestData.
func filterWorkbook(path string) error {
	src, err := xlsx.OpenFile(path)
	if err != nil {
		return err
	}

	keepNode := make(map[string]bool, len(Nodes))
	for _, n := range Nodes {
		keepNode[n] = true
	}

	out := xlsx.NewFile()
	for _, sheet := range src.Sheets {
		if excluded(sheet.Name) {
			continue
		}

		dst, err := out.AddSheet(sheet.Name)
		if err != nil {
			return err
		}

		// Column holding node-like values, -1 when the sheet has none.
		nodeCol := -1
		for i, row := range sheet.Rows {
			if i == 0 {
				if sheet.Name != "ix_type_mapping" {
					nodeCol = findNodeColumn(row)
				}
				copyRow(dst, row)
				continue
			}

			if sheet.Name == "ix_type_mapping" {
				if len(row.Cells) > 0 && excluded(row.Cells[0].String()) {
					continue
				}
			} else if nodeCol >= 0 && nodeCol < len(row.Cells) {
				if !keepNode[row.Cells[nodeCol].String()] {
					continue
				}
			}

			copyRow(dst, row)
		}
	}

	return out.Save(path)
}

func excluded(name string) bool {
	for _, frag := range removeSheets {
		if strings.Contains(name, frag) {
			return true
		}
	}
	return false
}

func findNodeColumn(header *xlsx.Row) int {
	for i, cell := range header.Cells {
		if strings.Contains(cell.String(), "node") {
			return i
		}
	}
	return -1
}

func copyRow(sheet *xlsx.Sheet, row *xlsx.Row) {
	dst := sheet.AddRow()
	for _, cell := range row.Cells {
		dst.AddCell().SetValue(cell.Value)
	}
}
