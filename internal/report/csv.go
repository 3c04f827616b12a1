package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"SweepGo/internal/portscan"
)

// Header 报告表头
var Header = []string{"IP", "Port", "Status", "Reason"}

// Render 将报告按 IP, Port, Status, Reason 写成 CSV。
func Render(w io.Writer, r portscan.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, c := range r {
		row := []string{c.Host.String(), strconv.Itoa(int(c.Port)), c.State.String(), c.Reason}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Write 渲染报告后原子写入 path，失败时不会留下半截文件。
func Write(path string, r portscan.Report) error {
	var buf bytes.Buffer
	if err := Render(&buf, r); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return WriteAtomic(path, buf.Bytes())
}
