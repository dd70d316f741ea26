package publish

import (
	"context"
	stderrors "errors"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/vango-dev/elements/pkg/ssr"
)

// ErrInvalidName is returned for page names that are empty, absolute or
// escape the publish root.
var ErrInvalidName = stderrors.New("publish: invalid page name")

// Publisher stores a rendered page under a slash-separated name.
type Publisher interface {
	Publish(ctx context.Context, name string, html []byte) error
}

// cleanName validates name and returns it in slash form.
func cleanName(name string) (string, error) {
	if name == "" || strings.HasPrefix(name, "/") || strings.Contains(name, "\\") {
		return "", ErrInvalidName
	}
	clean := path.Clean(name)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", ErrInvalidName
	}
	return clean, nil
}

// DirPublisher writes pages below a directory.
type DirPublisher struct {
	dir string
}

// NewDirPublisher creates a publisher rooted at dir.
func NewDirPublisher(dir string) *DirPublisher {
	return &DirPublisher{dir: dir}
}

// Publish writes html to dir/name through a temporary file, so readers
// never see a partial page.
func (p *DirPublisher) Publish(ctx context.Context, name string, html []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	clean, err := cleanName(name)
	if err != nil {
		return err
	}
	dst := filepath.Join(p.dir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	f, err := os.CreateTemp(filepath.Dir(dst), ".publish-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(html); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}

// Multi publishes to every publisher in order and stops at the first
// error.
type Multi []Publisher

// Publish implements Publisher.
func (m Multi) Publish(ctx context.Context, name string, html []byte) error {
	for _, p := range m {
		if err := p.Publish(ctx, name, html); err != nil {
			return err
		}
	}
	return nil
}

// Definition is one element definition rendered in server context.
type Definition struct {
	Tag  string
	HTML string
}

// Collector records server define hook calls.
type Collector struct {
	mu   sync.Mutex
	defs []Definition
}

// Collect subscribes a new Collector to ssr.OnServerDefine. Call stop to
// unsubscribe.
func Collect() (c *Collector, stop func()) {
	c = &Collector{}
	stop = ssr.OnServerDefine(c.add)
	return c, stop
}

func (c *Collector) add(tag, html string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defs = append(c.defs, Definition{Tag: tag, HTML: html})
}

// Definitions returns the collected definitions in define order.
func (c *Collector) Definitions() []Definition {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Definition(nil), c.defs...)
}

// Merge inserts every collected definition into pageHTML.
func (c *Collector) Merge(pageHTML string) (string, error) {
	out := pageHTML
	for _, d := range c.Definitions() {
		merged, err := ssr.InsertTemplates(d.Tag, d.HTML, out)
		if err != nil {
			return "", err
		}
		out = merged
	}
	return out, nil
}
