package core

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"filippo.io/age"

	"logonlog/internal/sheet"
)

// PackageMetadata contains information about the created archive.
type PackageMetadata struct {
	Path         string `json:"archive_path"`
	Encrypted    bool   `json:"encrypted"`
	FileCount    int    `json:"file_count"`
	BytesWritten int64  `json:"bytes_written"`
}

// BundleLogs creates a tar.gz archive of the log documents under root that
// were modified at or after since (zero means all), optionally encrypting it
// with the provided age public key. The archive is named after label and
// timestamp and written to outDir.
func BundleLogs(ctx context.Context, root, outDir, label string, timestamp, since time.Time, agePublicKey string) (*PackageMetadata, error) {
	timeStr := timestamp.UTC().Format("20060102T150405Z")
	baseFilename := fmt.Sprintf("logonlog_%s_%s.tar.gz", SanitizeName(label), timeStr)

	encrypted := agePublicKey != ""
	outputPath := filepath.Join(outDir, baseFilename)
	if encrypted {
		outputPath += ".age"
	}

	var recipient *age.X25519Recipient
	if encrypted {
		var err error
		recipient, err = age.ParseX25519Recipient(agePublicKey)
		if err != nil {
			return nil, fmt.Errorf("failed to parse age public key: %w", err)
		}
	}

	outFile, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file %s: %w", outputPath, err)
	}

	meta, err := writeBundle(ctx, outFile, root, since, recipient)
	closeErr := outFile.Close()
	if err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close %s: %w", outputPath, closeErr)
	}
	if err != nil {
		os.Remove(outputPath)
		return nil, err
	}

	meta.Path = outputPath
	meta.Encrypted = encrypted
	if stat, err := os.Stat(outputPath); err == nil {
		meta.BytesWritten = stat.Size()
	}
	return meta, nil
}

func writeBundle(ctx context.Context, out io.Writer, root string, since time.Time, recipient *age.X25519Recipient) (*PackageMetadata, error) {
	// Set up the writer pipeline: tar -> gzip -> [age] -> file
	var encWriter io.WriteCloser
	sink := out
	if recipient != nil {
		var err error
		encWriter, err = age.Encrypt(out, recipient)
		if err != nil {
			return nil, fmt.Errorf("failed to create age encryption writer: %w", err)
		}
		sink = encWriter
	}
	gzWriter := gzip.NewWriter(sink)
	tarWriter := tar.NewWriter(gzWriter)
	bytesCounter := &countingWriter{wrapped: tarWriter}

	fileCount := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), sheet.Ext) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("failed to stat file %s: %w", path, err)
		}
		if !since.IsZero() && info.ModTime().Before(since) {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("failed to calculate relative path for %s: %w", path, err)
		}

		file, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open file %s: %w", path, err)
		}
		defer file.Close()

		header := &tar.Header{
			Name:    "logs/" + filepath.ToSlash(relPath),
			Mode:    0644,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		}
		if err := tarWriter.WriteHeader(header); err != nil {
			return fmt.Errorf("failed to write tar header for %s: %w", path, err)
		}

		// Copy file contents using streaming I/O
		if _, err := io.CopyN(bytesCounter, file, info.Size()); err != nil {
			return fmt.Errorf("failed to copy file %s to archive: %w", path, err)
		}

		fileCount++
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk log directory: %w", err)
	}

	// Close writers in correct order
	if err := tarWriter.Close(); err != nil {
		return nil, fmt.Errorf("failed to close tar writer: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return nil, fmt.Errorf("failed to close gzip writer: %w", err)
	}
	if encWriter != nil {
		if err := encWriter.Close(); err != nil {
			return nil, fmt.Errorf("failed to close age encryption writer: %w", err)
		}
	}

	return &PackageMetadata{
		FileCount:    fileCount,
		BytesWritten: bytesCounter.count,
	}, nil
}

// countingWriter wraps another writer and counts bytes written.
type countingWriter struct {
	wrapped io.Writer
	count   int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.wrapped.Write(p)
	c.count += int64(n)
	return n, err
}

// ValidateAgePublicKey validates that a string is a valid age public key.
func ValidateAgePublicKey(key string) error {
	if !strings.HasPrefix(key, "age1") {
		return fmt.Errorf("age public key must start with 'age1'")
	}

	_, err := age.ParseX25519Recipient(key)
	if err != nil {
		return fmt.Errorf("invalid age public key: %w", err)
	}

	return nil
}
