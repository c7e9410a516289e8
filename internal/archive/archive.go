// Package archive packages a project workspace into a zip file.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Zip writes every regular file under srcDir into a deflate-compressed zip
// at destPath. Entry names are slash-separated paths relative to srcDir and
// appear in lexical walk order, so the same tree always yields the same
// entry list. An empty directory produces a valid archive with no entries.
// It returns the number of entries written.
//
// The archive is written to a temp file next to destPath and renamed into
// place, so a failed walk never leaves a truncated archive behind.
func Zip(srcDir, destPath string) (int, error) {
	info, err := os.Stat(srcDir)
	if err != nil {
		return 0, fmt.Errorf("failed to stat %s: %w", srcDir, err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("%s is not a directory", srcDir)
	}

	absDest, err := filepath.Abs(destPath)
	if err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(destPath), filepath.Base(destPath)+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("failed to create archive: %w", err)
	}
	tmpPath := tmp.Name()
	absTmp, _ := filepath.Abs(tmpPath)

	count, err := writeEntries(tmp, srcDir, map[string]bool{absDest: true, absTmp: true})
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return 0, err
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("failed to move archive into place: %w", err)
	}
	return count, nil
}

// writeEntries walks srcDir into a zip stream on w. Paths in skip (absolute)
// are left out so an archive placed inside srcDir does not include itself.
func writeEntries(w io.Writer, srcDir string, skip map[string]bool) (int, error) {
	zw := zip.NewWriter(w)
	count := 0

	walkErr := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if abs, _ := filepath.Abs(path); skip[abs] {
			return nil
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		if err := addFile(zw, path, filepath.ToSlash(rel)); err != nil {
			return fmt.Errorf("failed to archive %s: %w", rel, err)
		}
		count++
		return nil
	})
	if walkErr != nil {
		zw.Close()
		return 0, walkErr
	}
	if err := zw.Close(); err != nil {
		return 0, err
	}
	return count, nil
}

func addFile(zw *zip.Writer, path, name string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate

	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(out, in)
	return err
}
