package codec

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/deskgrid/internal/layout"
)

// Banner is the first line of every file written by Encode.
const Banner = "# This file is managed by deskgrid. Do not edit it while deskgrid is running."

// Encode writes cfgs as a positions document.
func Encode(w io.Writer, cfgs []*layout.Configuration) error {
	if _, err := io.WriteString(w, Banner+"\n"); err != nil {
		return err
	}

	list := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, cfg := range cfgs {
		list.Content = append(list.Content, configNode(cfg))
	}
	root := mapping(keyNode(keyConfigs), list)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("failed to encode positions: %w", err)
	}
	return enc.Close()
}

func configNode(cfg *layout.Configuration) *yaml.Node {
	monitors := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, id := range sortedKeys(cfg.Monitors) {
		rec := cfg.Monitors[id]
		geom := mapping(
			keyNode(keyX), intNode(int64(rec.Geometry.X)),
			keyNode(keyY), intNode(int64(rec.Geometry.Y)),
			keyNode(keyWidth), intNode(int64(rec.Geometry.Width)),
			keyNode(keyHeight), intNode(int64(rec.Geometry.Height)),
		)
		monitors.Content = append(monitors.Content, mapping(
			keyNode(keyID), stringNode(id),
			keyNode(keyDisplayName), stringNode(rec.DisplayName),
			keyNode(keyGeometry), geom,
		))
	}

	icons := mapping()
	for _, id := range sortedKeys(cfg.Icons) {
		pos := cfg.Icons[id]
		entry := mapping(
			keyNode(keyRow), uintNode(uint64(pos.Row)),
			keyNode(keyCol), uintNode(uint64(pos.Col)),
		)
		if pos.LastSeen != 0 {
			entry.Content = append(entry.Content, keyNode(keyLastSeen), uintNode(pos.LastSeen))
		}
		icons.Content = append(icons.Content, stringNode(id), entry)
	}

	return mapping(
		keyNode(keyLevel), intNode(int64(cfg.Level)),
		keyNode(keyMonitors), monitors,
		keyNode(keyIcons), icons,
	)
}

func mapping(pairs ...*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Content: pairs}
}

func keyNode(key string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
}

func stringNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Style: yaml.DoubleQuotedStyle, Value: s}
}

func intNode(v int64) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(v, 10)}
}

func uintNode(v uint64) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatUint(v, 10)}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WriteFile replaces path with the encoded document. The data goes to a
// temporary sibling first; path is only touched by the final rename.
func WriteFile(path string, cfgs []*layout.Configuration) error {
	return writeAtomic(path, func(w io.Writer) error {
		return Encode(w, cfgs)
	})
}

func writeAtomic(path string, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file for %q: %w", path, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %q: %w", tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync %q: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %q: %w", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("failed to set mode on %q: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to finalize %q: %w", path, err)
	}
	return nil
}
