package runtime

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// NativeRuntime implements SystemRuntime against the real filesystem and
// network, the posture a CLI host embedding this engine runs with.
type NativeRuntime struct {
	client *http.Client
}

// NewNativeRuntime builds a NativeRuntime with a bounded-timeout HTTP
// client for FetchURL (spec §A.3's "HTTP fetch timeout for mediabag").
func NewNativeRuntime(fetchTimeout time.Duration) *NativeRuntime {
	if fetchTimeout <= 0 {
		fetchTimeout = 30 * time.Second
	}
	return &NativeRuntime{client: &http.Client{Timeout: fetchTimeout}}
}

// LoadEnv reads a .env file into the process environment via godotenv,
// matching the teacher's own test harness bootstrap (SPEC_FULL.md §A.3).
// A missing file is not an error: .env is optional ambient configuration.
func (n *NativeRuntime) LoadEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

func (n *NativeRuntime) FileRead(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (n *NativeRuntime) FileReadString(path string) (string, error) {
	b, err := n.FileRead(path)
	return string(b), err
}

func (n *NativeRuntime) FileWrite(path string, content []byte) error {
	return os.WriteFile(path, content, 0o644)
}

func (n *NativeRuntime) PathExists(path string, kind PathKind) (bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	switch kind {
	case FileOnly:
		return !info.IsDir(), nil
	case DirOnly:
		return info.IsDir(), nil
	default:
		return true, nil
	}
}

func (n *NativeRuntime) DirCreate(path string, recursive bool) error {
	if recursive {
		return os.MkdirAll(path, 0o755)
	}
	return os.Mkdir(path, 0o755)
}

type nativeTempDir struct{ path string }

func (t nativeTempDir) Path() string   { return t.path }
func (t nativeTempDir) Remove() error { return os.RemoveAll(t.path) }

func (n *NativeRuntime) TempDir(prefix string) (TempDir, error) {
	path, err := os.MkdirTemp("", prefix)
	if err != nil {
		return nil, err
	}
	return nativeTempDir{path: path}, nil
}

func (n *NativeRuntime) FetchURL(url string) ([]byte, string, error) {
	resp, err := n.client.Get(url)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch %q: status %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = GuessMimeType(filepath.Base(url))
	}
	return body, mime, nil
}
