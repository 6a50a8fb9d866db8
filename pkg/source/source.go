// Package source provides flat key/value configuration entries for the
// secret-key resolver.
//
// Secret resolution works on a flat view of configuration: a base key
// such as AUTH_SECRET_KEY, or a family of keys sharing the prefix
// AUTH_SECRET_KEY_. A Source produces that view from the process
// environment, a YAML file, a Kubernetes Secret, or a literal map.
package source

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Source yields configuration entries. Implementations return a fresh map
// on every call; callers may modify it.
type Source interface {
	Entries(ctx context.Context) (map[string]string, error)
}

// Func adapts a function to a Source.
type Func func(ctx context.Context) (map[string]string, error)

func (f Func) Entries(ctx context.Context) (map[string]string, error) {
	return f(ctx)
}

// Map returns a Source serving a copy of m.
func Map(m map[string]string) Source {
	return Func(func(context.Context) (map[string]string, error) {
		out := make(map[string]string, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out, nil
	})
}

// Env returns a Source over the process environment.
func Env() Source {
	return Func(func(context.Context) (map[string]string, error) {
		return parseEnviron(os.Environ()), nil
	})
}

func parseEnviron(environ []string) map[string]string {
	out := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		out[k] = v
	}
	return out
}

// File returns a Source reading a YAML document from path.
//
// Scalar values are taken verbatim as written, so 007 stays "007" and
// 2024-01-02 is not read as a date. Null values become "". Nested mappings
// are flattened by joining keys with "_", so
//
//	AUTH_SECRET_KEY:
//	  alice: s3cr3t
//
// yields AUTH_SECRET_KEY_alice. A missing file is an error.
func File(path string) Source {
	return Func(func(context.Context) (map[string]string, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return parseYAML(data)
	})
}

func parseYAML(data []byte) (map[string]string, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing secrets file: %w", err)
	}
	out := make(map[string]string)
	if len(doc.Content) == 0 {
		return out, nil
	}
	root := resolveAlias(doc.Content[0])
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parsing secrets file: line %d: top level must be a mapping", root.Line)
	}
	if err := flatten("", root, out); err != nil {
		return nil, err
	}
	return out, nil
}

func flatten(prefix string, node *yaml.Node, out map[string]string) error {
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], resolveAlias(node.Content[i+1])
		if keyNode.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: mapping keys must be scalars", keyNode.Line)
		}
		key := keyNode.Value
		if prefix != "" {
			key = prefix + "_" + key
		}
		switch valNode.Kind {
		case yaml.ScalarNode:
			if valNode.ShortTag() == "!!null" {
				out[key] = ""
				continue
			}
			out[key] = valNode.Value
		case yaml.MappingNode:
			if err := flatten(key, valNode, out); err != nil {
				return err
			}
		default:
			return fmt.Errorf("key %q (line %d): unsupported value kind", key, valNode.Line)
		}
	}
	return nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

// Layered merges sources in order; later sources override earlier ones.
// Keys are compared exactly.
func Layered(sources ...Source) Source {
	return Func(func(ctx context.Context) (map[string]string, error) {
		out := make(map[string]string)
		for i, s := range sources {
			entries, err := s.Entries(ctx)
			if err != nil {
				return nil, fmt.Errorf("source %d: %w", i, err)
			}
			for k, v := range entries {
				out[k] = v
			}
		}
		return out, nil
	})
}

// SortedKeys returns the keys of entries in lexical order.
func SortedKeys(entries map[string]string) []string {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
