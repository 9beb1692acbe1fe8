// Fetches the native libraries the ORT build of the local embedder links
// against: the ONNX Runtime shared library and the HuggingFace tokenizers
// static library for the current platform.
//
// Required env: ORT_VERSION        (e.g. "1.23.2")
// Optional env: ORT_LIB_DIR        (default "./lib")
//
//	TOKENIZERS_VERSION (default "1.24.0")
//
// Usage: ORT_VERSION=1.23.2 go run ./tools/download-ort
package main

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// nativeLib is one archive to fetch and one file to pull out of it.
type nativeLib struct {
	name     string
	url      string
	fileName string
}

func main() {
	ortVersion := os.Getenv("ORT_VERSION")
	if ortVersion == "" {
		fatal("ORT_VERSION env var is required")
	}
	tokVersion := envOr("TOKENIZERS_VERSION", "1.24.0")
	destDir := envOr("ORT_LIB_DIR", "./lib")

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		fatal("create directory: %v", err)
	}

	libs, err := platformLibs(ortVersion, tokVersion)
	if err != nil {
		fatal("%v", err)
	}

	for _, lib := range libs {
		destPath := filepath.Join(destDir, lib.fileName)
		if _, statErr := os.Stat(destPath); statErr == nil {
			fmt.Printf("%s already exists at %s, skipping\n", lib.name, destPath)
			continue
		}

		fmt.Printf("Downloading %s from %s\n", lib.name, lib.url)
		if err := fetchWithRetry(lib, destDir); err != nil {
			fatal("%s download failed: %v", lib.name, err)
		}
		fmt.Printf("%s installed to %s\n", lib.name, destPath)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// platformLibs resolves the release archive names for GOOS/GOARCH.
func platformLibs(ortVersion, tokVersion string) ([]nativeLib, error) {
	var ortArchive, ortLib, tokArchive string

	switch key := runtime.GOOS + "/" + runtime.GOARCH; key {
	case "linux/amd64":
		ortArchive = fmt.Sprintf("onnxruntime-linux-x64-%s.tgz", ortVersion)
		ortLib = "libonnxruntime.so"
		tokArchive = "libtokenizers.linux-amd64.tar.gz"
	case "linux/arm64":
		ortArchive = fmt.Sprintf("onnxruntime-linux-aarch64-%s.tgz", ortVersion)
		ortLib = "libonnxruntime.so"
		tokArchive = "libtokenizers.linux-arm64.tar.gz"
	case "darwin/arm64":
		ortArchive = fmt.Sprintf("onnxruntime-osx-arm64-%s.tgz", ortVersion)
		ortLib = "libonnxruntime.dylib"
		tokArchive = "libtokenizers.darwin-arm64.tar.gz"
	case "darwin/amd64":
		ortArchive = fmt.Sprintf("onnxruntime-osx-x86_64-%s.tgz", ortVersion)
		ortLib = "libonnxruntime.dylib"
		tokArchive = "libtokenizers.darwin-x86_64.tar.gz"
	default:
		return nil, fmt.Errorf("no prebuilt libraries for %s", key)
	}

	return []nativeLib{
		{
			name: "ONNX Runtime " + ortVersion,
			url: fmt.Sprintf("https://github.com/microsoft/onnxruntime/releases/download/v%s/%s",
				ortVersion, ortArchive),
			fileName: ortLib,
		},
		{
			name: "tokenizers " + tokVersion,
			url: fmt.Sprintf("https://github.com/daulet/tokenizers/releases/download/v%s/%s",
				tokVersion, tokArchive),
			fileName: "libtokenizers.a",
		},
	}, nil
}

func fetchWithRetry(lib nativeLib, destDir string) error {
	delay := 2 * time.Second
	var err error
	for attempt := 0; attempt < 4; attempt++ {
		if attempt > 0 {
			fmt.Fprintf(os.Stderr, "retry in %s: %v\n", delay, err)
			time.Sleep(delay)
			delay *= 2
		}
		if err = fetch(lib, destDir); err == nil {
			return nil
		}
	}
	return err
}

func fetch(lib nativeLib, destDir string) error {
	resp, err := http.Get(lib.url) //nolint:gosec
	if err != nil {
		return fmt.Errorf("fetch %s: %w", lib.url, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d for %s", resp.StatusCode, lib.url)
	}

	return extractTgz(resp.Body, destDir, lib.fileName)
}

func extractTgz(body io.Reader, destDir, fileName string) error {
	gz, err := gzip.NewReader(body)
	if err != nil {
		return fmt.Errorf("gzip reader: %w", err)
	}
	defer gz.Close() //nolint:errcheck

	// Versioned variants like libonnxruntime.1.23.2.dylib also match.
	stem := strings.TrimSuffix(fileName, filepath.Ext(fileName))

	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("tar read: %w", err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}

		base := filepath.Base(header.Name)
		if base != fileName && !strings.HasPrefix(base, stem+".") {
			continue
		}

		return writeFile(filepath.Join(destDir, fileName), tr)
	}

	return fmt.Errorf("%s not found in archive", fileName)
}

func writeFile(path string, src io.Reader) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if _, err := io.Copy(out, src); err != nil {
		_ = out.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}

	return out.Close()
}
