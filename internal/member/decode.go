package member

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrDecode：载荷不是可用的 CSV（语法错误、空载荷或缺少必需列）
var ErrDecode = errors.New("decode failed")

// RequiredColumns：缺任一列即视为载荷不可用
var RequiredColumns = []string{ColID, ColName, ColOriginCountry, ColOriginLatitude, ColOriginLongitude}

// 文档注释：解码 CSV 文本为按表头键控的行
// 背景：首行为表头；空行跳过但不影响行号，每行以 LineKey 记录其在表格中的起始行；允许行长不一致，缺失的尾部单元格视为缺列；多余列原样保留但解析时忽略。
// 约束：所有单元格以字符串形式交给解析边界，不做类型推断。
func DecodeCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty payload", ErrDecode)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrDecode, err)
	}
	for i, h := range header {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		header[i] = h
	}
	if missing := missingColumns(header); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", ErrDecode, strings.Join(missing, ","))
	}

	var rows []Row
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		if blank(rec) {
			continue
		}
		line, _ := reader.FieldPos(0)
		row := make(Row, len(header)+1)
		for i, col := range header {
			if i < len(rec) && col != "" {
				row[col] = rec[i]
			}
		}
		row[LineKey] = line
		rows = append(rows, row)
	}
	return rows, nil
}

func missingColumns(header []string) []string {
	have := make(map[string]bool, len(header))
	for _, h := range header {
		have[h] = true
	}
	var missing []string
	for _, c := range RequiredColumns {
		if !have[c] {
			missing = append(missing, c)
		}
	}
	return missing
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
