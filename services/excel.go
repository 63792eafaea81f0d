package services

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"go_procure_backend/models"
	"go_procure_backend/pkg/errs"
	"go_procure_backend/pkg/logging"

	"github.com/xuri/excelize/v2"
)

// headerScanRows bounds the header search.
const headerScanRows = 20

// maxHeaderOffset bounds the fallback offset sweep.
const maxHeaderOffset = 7

type fieldKeywords struct {
	exact  []string // cell must equal the keyword, worth 2 points
	substr []string // keyword contained in the cell, worth 1 point
}

// requirement fields resolvable from a header row, checked in this order
var fieldOrder = []string{"product", "spec", "quantity", "category", "unit"}

var headerKeywords = map[string]fieldKeywords{
	"product": {
		exact:  []string{"产品名称", "商品名称", "物品名称", "品名", "名称"},
		substr: []string{"产品", "品名", "名称"},
	},
	"spec": {
		exact:  []string{"规格型号", "型号规格", "产品描述", "规格", "型号"},
		substr: []string{"规格", "型号", "描述"},
	},
	"quantity": {
		exact:  []string{"采购数量", "需求数量", "数量"},
		substr: []string{"数量"},
	},
	"category": {
		exact:  []string{"设备分类", "产品分类", "分类", "类别"},
		substr: []string{"分类", "类别"},
	},
	"unit": {
		exact:  []string{"单位"},
		substr: []string{"单位"},
	},
}

// ExcelService turns uploaded spreadsheets into requirement items and
// writes result workbooks. Files are fully buffered; this is not a
// streaming parser.
type ExcelService struct{}

func NewExcelService() *ExcelService {
	return &ExcelService{}
}

// ParseProcurementFile extracts the ordered requirement items of one
// workbook. Unreadable files and sheets without a resolvable product
// column raise an ExtractionError; no partial results are returned.
func (s *ExcelService) ParseProcurementFile(filename string, data []byte) ([]models.RequirementItem, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errs.NewExtractionError(filename, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logging.Logger.Warn("error closing workbook", "file", filename, "error", cerr)
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errs.NewExtractionError(filename, fmt.Errorf("workbook has no sheets"))
	}
	grid, err := sheetGrid(f, sheets[0])
	if err != nil {
		return nil, errs.NewExtractionError(filename, err)
	}

	headerRow, cols := detectHeader(grid)
	if _, ok := cols["product"]; !ok {
		return nil, errs.NewExtractionError(filename, fmt.Errorf("no usable header row found"))
	}

	var items []models.RequirementItem
	for r := headerRow + 1; r < len(grid); r++ {
		name := strings.TrimSpace(cellAt(grid, r, cols["product"]))
		if name == "" || isPlaceholder(name) {
			continue
		}
		item := models.RequirementItem{Name: name, Source: filename}
		if c, ok := cols["spec"]; ok {
			item.Spec = strings.TrimSpace(cellAt(grid, r, c))
		}
		if c, ok := cols["quantity"]; ok {
			item.Quantity = normalizeQuantity(cellAt(grid, r, c))
		}
		items = append(items, item)
	}
	return items, nil
}

// sheetGrid reads the sheet into a rectangular grid with every cell of
// a merged region carrying the value stored at its top-left anchor.
func sheetGrid(f *excelize.File, sheet string) ([][]string, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	merges, err := f.GetMergeCells(sheet)
	if err != nil {
		return nil, err
	}

	maxCols := 0
	for _, row := range rows {
		if len(row) > maxCols {
			maxCols = len(row)
		}
	}
	grid := make([][]string, len(rows))
	for i, row := range rows {
		grid[i] = make([]string, maxCols)
		copy(grid[i], row)
	}

	for _, m := range merges {
		startCol, startRow, err := excelize.CellNameToCoordinates(m.GetStartAxis())
		if err != nil {
			continue
		}
		endCol, endRow, err := excelize.CellNameToCoordinates(m.GetEndAxis())
		if err != nil {
			continue
		}
		value := m.GetCellValue()
		for r := startRow; r <= endRow && r <= len(grid); r++ {
			for c := startCol; c <= endCol && c <= maxCols; c++ {
				grid[r-1][c-1] = value
			}
		}
	}
	return grid, nil
}

func cellAt(grid [][]string, row, col int) string {
	if row < 0 || row >= len(grid) || col < 0 || col >= len(grid[row]) {
		return ""
	}
	return grid[row][col]
}

// scanHeaderRow assigns each cell to at most one field. Exact keyword
// hits score 2, substring hits 1; the first keyword match per field
// wins and an assigned field is never overwritten within the row.
func scanHeaderRow(row []string) (map[string]int, int) {
	cols := make(map[string]int)
	score := 0
	for j, cell := range row {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		for _, field := range fieldOrder {
			if _, taken := cols[field]; taken {
				continue
			}
			kw := headerKeywords[field]
			pts := 0
			for _, k := range kw.exact {
				if cell == k {
					pts = 2
					break
				}
			}
			if pts == 0 {
				for _, k := range kw.substr {
					if strings.Contains(cell, k) {
						pts = 1
						break
					}
				}
			}
			if pts > 0 {
				cols[field] = j
				score += pts
				break
			}
		}
	}
	return cols, score
}

// detectHeader scans the first 20 rows for the best-scoring row that
// resolves a product column. Without one it falls back to offsets 0-7,
// keeping the first row matching any known keyword, else offset 0.
func detectHeader(grid [][]string) (int, map[string]int) {
	bestRow := -1
	bestScore := 0
	var bestCols map[string]int
	for i := 0; i < len(grid) && i < headerScanRows; i++ {
		cols, score := scanHeaderRow(grid[i])
		if _, ok := cols["product"]; !ok {
			continue
		}
		if score > bestScore {
			bestRow, bestScore, bestCols = i, score, cols
		}
	}
	if bestRow >= 0 {
		return bestRow, bestCols
	}

	for off := 0; off <= maxHeaderOffset && off < len(grid); off++ {
		cols, score := scanHeaderRow(grid[off])
		if score > 0 {
			return off, cols
		}
	}
	if len(grid) > 0 {
		cols, _ := scanHeaderRow(grid[0])
		return 0, cols
	}
	return 0, map[string]int{}
}

var thousandsSeparators = strings.NewReplacer(",", "", "，", "")

// normalizeQuantity strips ASCII and full-width thousands separators.
// Empty, "0" and "-" mean "not specified", never a zero quantity.
func normalizeQuantity(raw string) *float64 {
	s := strings.TrimSpace(thousandsSeparators.Replace(raw))
	if s == "" || s == "0" || s == "-" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func isPlaceholder(name string) bool {
	switch strings.ToLower(name) {
	case "none", "nan":
		return true
	}
	return false
}

// export column layout, fixed by the downstream order sheet
var exportColumns = []string{
	"客户名称缩写", "项目/门店名称", "我方开票抬头", "需求发起人",
	"采购应下单日期", "货品编码", "合同产品名称", "合同型号规格",
	"合同数量", "单位", "合同单价", "采购需求补充说明", "网购链接", "收货地址",
}

// BuildExport writes reviewed results into a single-sheet workbook with
// the fixed column layout above.
func (s *ExcelService) BuildExport(req models.ExportRequest) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	const sheet = "采购清单"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheet, "A1", &exportColumns); err != nil {
		return nil, err
	}

	for i, item := range req.Details {
		var matchedID, productName, spec, unit string
		var salePrice interface{} = ""
		if item.Matched != nil {
			matchedID = strconv.FormatInt(item.Matched.ID, 10)
			productName = item.Matched.ProductName
			spec = item.Matched.Spec
			unit = item.Matched.Unit
			if item.Matched.SalePrice != nil {
				salePrice = *item.Matched.SalePrice
			}
		}
		if productName == "" {
			productName = item.ParsedName
		}
		if spec == "" {
			spec = item.ParsedSpec
		}
		var quantity interface{} = ""
		if item.ParsedQuantity != nil {
			quantity = *item.ParsedQuantity
		}

		row := []interface{}{
			req.CustomerAbbr, req.ProjectName, req.InvoiceTitle, req.Requester,
			req.OrderDate, matchedID, productName, spec,
			quantity, unit, salePrice, item.Remark, item.PurchaseLink, req.DeliveryAddress,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}
	return f.WriteToBuffer()
}
