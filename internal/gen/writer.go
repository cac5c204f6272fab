package gen

import (
	"fmt"
	"os"
	"path/filepath"
)

// File permission constants.
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// WriteFiles writes all generated files to the output directory, or to the
// file's own Dir when set. It creates directories that don't exist.
func WriteFiles(files []GeneratedFile, outputDir string) error {
	for _, file := range files {
		dir := outputDir
		if file.Dir != "" {
			dir = file.Dir
		}

		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return fmt.Errorf("creating directory for %s: %w", file.Filename, err)
		}

		outputPath := filepath.Join(dir, file.Filename)

		err := os.WriteFile(outputPath, file.Content, filePerm)
		if err != nil {
			return fmt.Errorf("writing file %s: %w", file.Filename, err)
		}
	}

	return nil
}
