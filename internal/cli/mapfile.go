package cli

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"gopkg.in/yaml.v3"
)

var ErrInvalidMapFile = errors.New("invalid map file")

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// readMapFile decodes a YAML mapping of paths to values. Compressed input is
// recognized by its magic number. An empty document is an empty mapping.
func readMapFile(r io.Reader) (map[string]*yaml.Node, error) {
	r, closeFn, err := decompress(r)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]*yaml.Node{}, nil
		}

		return nil, fmt.Errorf("%w: %w", ErrInvalidMapFile, err)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}

	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: line %d: expected a mapping of paths to values", ErrInvalidMapFile, root.Line)
	}

	items := make(map[string]*yaml.Node, len(root.Content)/2)

	for i := 0; i+1 < len(root.Content); i += 2 {
		k, v := root.Content[i], root.Content[i+1]
		if k.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%w: line %d: keys must be paths", ErrInvalidMapFile, k.Line)
		}

		items[k.Value] = v
	}

	return items, nil
}

func decompress(r io.Reader) (io.Reader, func(), error) {
	br := bufio.NewReader(r)

	// A short read only means the input is too small to be compressed.
	magic, _ := br.Peek(len(zstdMagic))

	switch {
	case bytes.HasPrefix(magic, gzipMagic):
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: gzip: %w", ErrInvalidMapFile, err)
		}

		return gz, func() { _ = gz.Close() }, nil

	case bytes.HasPrefix(magic, zstdMagic):
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: zstd: %w", ErrInvalidMapFile, err)
		}

		return dec, dec.Close, nil
	}

	return br, func() {}, nil
}

func writeItems(w io.Writer, items iter.Seq2[string, *yaml.Node]) error {
	out := &yaml.Node{Kind: yaml.MappingNode}
	for k, v := range items {
		out.Content = append(out.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			v,
		)
	}

	return writeYAML(w, out)
}

func writeYAML(w io.Writer, n *yaml.Node) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(n); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}

	return nil
}
