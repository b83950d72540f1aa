package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/YuWang03/kunyu-project-sub003/internal/dto"
)

// ErrExportGenerateFail 生成 Excel 失败
var ErrExportGenerateFail = errors.New("生成 Excel 文件失败")

// ═══════════════════════════════════════════════════════════
// Export — 导出考勤纪录为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "考勤纪录"
//   - 标题行：姓名 (UID) 起讫日期
//   - 列：日期 / 上班 / 上班状态 / 下班 / 下班状态 / 需处理
//   - 需处理的行以底色标示

func (s *attendanceService) Export(ctx context.Context, uid string, req *dto.AttendanceQueryRequest) (*bytes.Buffer, string, error) {
	records, from, to, err := s.load(ctx, uid, req)
	if err != nil {
		return nil, "", err
	}
	startDate := dto.FormatDate(from)
	endDate := dto.FormatDate(to.AddDate(0, 0, -1))

	displayName := uid
	emp, err := s.repo.Employee.GetByUID(ctx, uid)
	switch {
	case err == nil:
		displayName = fmt.Sprintf("%s (%s)", emp.Name, emp.UID)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		s.logger.Warn("查询员工资料失败，导出使用 UID", zap.String("uid", uid), zap.Error(err))
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "考勤纪录"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headers := []string{"日期", "上班", "上班状态", "下班", "下班状态", "需处理"}
	f.SetColWidth(sheetName, "A", "A", 14)
	f.SetColWidth(sheetName, "B", colName(len(headers)-1), 12)

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	followUpStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FCE4D6"}, Pattern: 1},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s 考勤纪录 %s ~ %s", displayName, startDate, endDate))
	f.MergeCell(sheetName, "A1", cell(colName(len(headers)-1), 1))
	f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	// 表头
	row := 2
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), row), h)
	}
	f.SetCellStyle(sheetName, cell("A", row), cell(colName(len(headers)-1), row), headerStyle)

	// 数据行
	row = 3
	for _, r := range records {
		followUp := ""
		if r.NeedsFollowUp() {
			followUp = "是"
		}
		values := []string{
			r.Date,
			r.ClockInDisplay(), r.ClockInStatus(),
			r.ClockOutDisplay(), r.ClockOutStatus(),
			followUp,
		}
		for i, v := range values {
			f.SetCellValue(sheetName, cell(colName(i), row), v)
		}
		if followUp != "" {
			f.SetCellStyle(sheetName, cell("A", row), cell(colName(len(headers)-1), row), followUpStyle)
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("考勤纪录_%s_%s_%s.xlsx", uid, startDate, endDate)
	return buf, filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
