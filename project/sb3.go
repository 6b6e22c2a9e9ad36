package project

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
)

const projectEntry = "project.json"

// LoadFile reads either a .sb3 container or a bare project.json
func LoadFile(name string) (*Package, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read project: %w", err)
	}
	if isZip(data) {
		return LoadSB3(bytes.NewReader(data), int64(len(data)))
	}
	return Load(data)
}

// LoadSB3 decodes a zip container holding project.json and its assets
func LoadSB3(r io.ReaderAt, size int64) (*Package, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPackage, err)
	}

	var doc []byte
	assets := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		data, err := readEntry(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		if path.Base(f.Name) == projectEntry {
			doc = data
			continue
		}
		assets[path.Base(f.Name)] = data
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: %s not found in container", ErrInvalidPackage, projectEntry)
	}

	pkg, err := Load(doc)
	if err != nil {
		return nil, err
	}
	pkg.Assets = assets
	return pkg, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func isZip(data []byte) bool {
	return len(data) >= 4 && data[0] == 'P' && data[1] == 'K' && data[2] == 3 && data[3] == 4
}
