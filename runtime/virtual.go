package runtime

import (
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// VirtualRuntime is an in-memory SystemRuntime for hosts that must not let
// a filter touch the real filesystem or network: every path is a key in
// a map, FetchURL resolves only against entries preloaded with Seed.
type VirtualRuntime struct {
	mu    sync.Mutex
	files map[string][]byte
	dirs  map[string]bool
}

// NewVirtualRuntime returns an empty virtual filesystem.
func NewVirtualRuntime() *VirtualRuntime {
	return &VirtualRuntime{
		files: map[string][]byte{},
		dirs:  map[string]bool{"/": true},
	}
}

// Seed preloads a virtual file, for tests and for hosts that resolve
// "fetch" sources against bundled content instead of the network.
func (v *VirtualRuntime) Seed(path string, content []byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.files[path] = content
}

func (v *VirtualRuntime) FileRead(p string) ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	content, ok := v.files[p]
	if !ok {
		return nil, fmt.Errorf("virtual runtime: no such file %q", p)
	}
	return content, nil
}

func (v *VirtualRuntime) FileReadString(p string) (string, error) {
	b, err := v.FileRead(p)
	return string(b), err
}

func (v *VirtualRuntime) FileWrite(p string, content []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.files[p] = content
	return nil
}

func (v *VirtualRuntime) PathExists(p string, kind PathKind) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.files[p]; ok {
		return kind != DirOnly, nil
	}
	if v.dirs[p] {
		return kind != FileOnly, nil
	}
	return false, nil
}

func (v *VirtualRuntime) DirCreate(p string, recursive bool) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !recursive {
		v.dirs[p] = true
		return nil
	}
	for cur := p; cur != "/" && cur != "."; cur = path.Dir(cur) {
		v.dirs[cur] = true
	}
	v.dirs["/"] = true
	return nil
}

type virtualTempDir struct {
	v    *VirtualRuntime
	path string
}

func (t virtualTempDir) Path() string { return t.path }

func (t virtualTempDir) Remove() error {
	t.v.mu.Lock()
	defer t.v.mu.Unlock()
	prefix := t.path + "/"
	for fp := range t.v.files {
		if strings.HasPrefix(fp, prefix) {
			delete(t.v.files, fp)
		}
	}
	delete(t.v.dirs, t.path)
	return nil
}

func (v *VirtualRuntime) TempDir(prefix string) (TempDir, error) {
	p := fmt.Sprintf("/tmp/%s-%s", prefix, uuid.NewString())
	v.mu.Lock()
	v.dirs[p] = true
	v.mu.Unlock()
	return virtualTempDir{v: v, path: p}, nil
}

func (v *VirtualRuntime) FetchURL(url string) ([]byte, string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	content, ok := v.files[url]
	if !ok {
		return nil, "", fmt.Errorf("virtual runtime: no seeded content for %q", url)
	}
	return content, GuessMimeType(url), nil
}
