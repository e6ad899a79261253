package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
)

// New 建立以 charmbracelet/log 為 handler 的 slog.Logger
//
// 參數:
//   - level: debug / info / warn / error
//   - format: text 為終端機格式，json 給收集器使用
//   - w: 輸出目標，nil 時為 os.Stderr
func New(level, format string, w io.Writer) (*slog.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var formatter log.Formatter
	switch format {
	case "", "text":
		formatter = log.TextFormatter
	case "json":
		formatter = log.JSONFormatter
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}

	if w == nil {
		w = os.Stderr
	}
	handler := log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Formatter:       formatter,
		ReportTimestamp: true,
		Prefix:          "ledger",
	})
	return slog.New(handler), nil
}
