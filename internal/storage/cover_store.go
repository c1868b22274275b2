package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"
)

// 对外回源路径固定挂在 /uploads，与本地目录名无关
const coverURLPrefix = "uploads"

// CoverStore 封面文件落盘：随机文件名 + 保留原始扩展名
type CoverStore struct {
	dir string
}

func NewCoverStore(dir string) (*CoverStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &CoverStore{dir: dir}, nil
}

// Save 返回对外可访问的相对路径（uploads/<uuid><ext>）
func (s *CoverStore) Save(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := uuid.New().String() + filepath.Ext(fh.Filename)
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create cover file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write cover file: %w", err)
	}
	return path.Join(coverURLPrefix, name), nil
}
