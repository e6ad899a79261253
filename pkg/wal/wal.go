package wal

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

const (
	// rw-r--r--
	FileModeDefault fs.FileMode = 0644

	// rwxr-xr-x，建立目錄用
	FileModeDir fs.FileMode = 0755
)

// file WAL 需要的檔案操作 (*os.File)
type file interface {
	io.ReadWriteSeeker
	io.Closer
	Sync() error
	Stat() (fs.FileInfo, error)
	Truncate(size int64) error
}

// WAL append-only 的 JSON lines 檔案
//
// 每筆資料一行，Append 完成前會 fsync，重啟後以 Replay 依寫入順序讀回。
type WAL struct {
	file file
	mu   sync.Mutex
}

// Open 開啟或建立 WAL 檔案 (必要時建立目錄)
// O_APPEND 每次寫入自動跳到檔尾，O_CREATE 檔案不存在時建立
func Open(path string) (*WAL, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, FileModeDir); err != nil {
			return nil, err
		}
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, FileModeDefault)
	if err != nil {
		return nil, err
	}
	return &WAL{file: file}, nil
}

// Append 寫入一批資料並刷入硬碟
//
// 整批先編碼到 buffer 再一次寫入，編碼失敗時不會留下半批資料。
// 寫入或 fsync 失敗時把檔案截回寫入前的長度，回傳錯誤的批次不會在 Replay 時出現。
func (w *WAL) Append(records ...any) error {
	buf := make([]byte, 0, 256*len(records))
	for _, r := range records {
		line, err := json.Marshal(r)
		if err != nil {
			return err
		}
		buf = append(buf, line...)
		buf = append(buf, '\n')
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	info, err := w.file.Stat()
	if err != nil {
		return err
	}
	offset := info.Size()
	if _, err := w.file.Write(buf); err != nil {
		return w.rollback(offset, err)
	}
	if err := w.file.Sync(); err != nil {
		return w.rollback(offset, err)
	}
	return nil
}

// rollback 截掉失敗批次已寫入的部分
func (w *WAL) rollback(offset int64, cause error) error {
	if err := w.file.Truncate(offset); err != nil {
		return errors.Join(cause, fmt.Errorf("truncate wal to %d: %w", offset, err))
	}
	return cause
}

// Sync 強制刷入硬碟
func (w *WAL) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Sync()
}

func (w *WAL) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

// Replay 從頭依序讀取所有資料
// callback 每次收到一行原始 JSON，避免一次把所有資料載入記憶體
func (w *WAL) Replay(callback func(raw json.RawMessage) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	// O_APPEND 下寫入不受讀取位置影響，讀完不需要 Seek 回檔尾

	decoder := json.NewDecoder(bufio.NewReader(w.file))
	for {
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if err := callback(raw); err != nil {
			return err
		}
	}
}
