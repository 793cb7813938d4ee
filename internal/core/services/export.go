// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package services

import (
	"fmt"
	"io"

	"github.com/360EntSecGroup-Skylar/excelize/v2"
)

// RegionSheet is the worksheet holding the exported region table.
const RegionSheet = "Sheet1"

// RegionTableHeader is the first row of an exported region table.
var RegionTableHeader = []string{
	"Region", "Subregion", "Confirmed", "Deaths", "Recovered", "Fatality Rate (%)", "Share of Country (%)",
}

// WriteRegionTableXLSX writes table as an XLSX workbook. Optional rates are
// left as empty cells.
func WriteRegionTableXLSX(w io.Writer, table RegionTable) error {
	f := excelize.NewFile()

	for col, title := range RegionTableHeader {
		if err := setCell(f, col+1, 1, title); err != nil {
			return err
		}
	}

	for i, row := range table.Rows {
		values := []interface{}{
			row.DisplayName, row.Subregion1, row.Confirmed, row.Deaths, row.Recovered, nil, nil,
		}
		if row.FatalityRatePercent != nil {
			values[5] = *row.FatalityRatePercent
		}
		if row.ShareOfCountryPercent != nil {
			values[6] = *row.ShareOfCountryPercent
		}
		for col, v := range values {
			if v == nil {
				continue
			}
			if err := setCell(f, col+1, i+2, v); err != nil {
				return err
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setCell(f *excelize.File, col, row int, v interface{}) error {
	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(RegionSheet, axis, v); err != nil {
		return fmt.Errorf("failed to set %s: %w", axis, err)
	}
	return nil
}
