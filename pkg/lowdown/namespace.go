package lowdown

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"io"
	"maps"
	"slices"

	"github.com/pkg/errors"

	"github.com/nieomylnieja/lowdown/internal/construct"
)

// Builder aggregates transformed top-level constructs by namespace.
// Once sealed, it produces an immutable [NamespaceIndex] and accepts no more constructs.
// It is not safe for concurrent use.
type Builder struct {
	options     generateOptions
	transformer *transformer
	namespaces  map[string][]Record
	added       map[string]bool
	sealed      bool
}

// NewBuilder creates an empty [Builder].
func NewBuilder(opts ...GenerateOption) *Builder {
	options := newGenerateOptions(opts)
	return &Builder{
		options:     options,
		transformer: newTransformer(options),
		namespaces:  make(map[string][]Record),
		added:       make(map[string]bool),
	}
}

// AddClass documents the class if it passes the whitelist.
func (b *Builder) AddClass(ctx context.Context, class *construct.ClassLike) error {
	if !b.options.whitelist.AllowsClass(class.Name) {
		return nil
	}
	return b.add(ctx, class, class.Namespace)
}

// AddFunction documents the free function if it passes the whitelist.
func (b *Builder) AddFunction(ctx context.Context, function *construct.Function) error {
	if !b.options.whitelist.AllowsFunction(function.Name) {
		return nil
	}
	return b.add(ctx, function, function.Namespace)
}

func (b *Builder) add(ctx context.Context, c construct.Construct, namespace string) error {
	if b.sealed {
		return errors.New("builder is already sealed")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	name := c.QualifiedName()
	if b.added[name] {
		return nil
	}
	record, err := b.transformer.Transform(ctx, c)
	if err != nil {
		return errors.Wrapf(err, "failed to document %s", name)
	}
	b.added[name] = true
	b.namespaces[namespace] = append(b.namespaces[namespace], record)
	return nil
}

// Seal sorts the collected records and returns the final index.
func (b *Builder) Seal() *NamespaceIndex {
	b.sealed = true
	index := &NamespaceIndex{namespaces: make([]Namespace, 0, len(b.namespaces))}
	for _, name := range slices.Sorted(maps.Keys(b.namespaces)) {
		records := slices.Clone(b.namespaces[name])
		slices.SortStableFunc(records, compareRecords)
		index.namespaces = append(index.namespaces, Namespace{Name: name, Records: records})
	}
	return index
}

func compareRecords(a, b Record) int {
	return cmp.Or(
		cmp.Compare(a.SortKey(), b.SortKey()),
		cmp.Compare(a.FullName(), b.FullName()),
	)
}

// NamespaceIndex is the sorted grouping of records by namespace.
type NamespaceIndex struct {
	namespaces []Namespace
}

// Namespace is a single entry of the [NamespaceIndex].
type Namespace struct {
	Name    string
	Records []Record
}

// Namespaces returns the namespaces in lexicographical order.
func (n *NamespaceIndex) Namespaces() []Namespace {
	return slices.Clone(n.namespaces)
}

// Records returns the sorted records of a namespace.
func (n *NamespaceIndex) Records(namespace string) []Record {
	i, found := slices.BinarySearchFunc(n.namespaces, namespace, func(ns Namespace, name string) int {
		return cmp.Compare(ns.Name, name)
	})
	if !found {
		return nil
	}
	return slices.Clone(n.namespaces[i].Records)
}

// MarshalJSON encodes the index as a single object keyed by namespace, preserving the order.
func (n *NamespaceIndex) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, ns := range n.namespaces {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalJSON(ns.Name)
		if err != nil {
			return nil, err
		}
		records, err := marshalJSON(ns.Records)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to encode %s namespace", ns.Name)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(records)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// WriteJSON writes the pretty-printed index to w.
// HTML characters, common in code examples, are not escaped.
func (n *NamespaceIndex) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	return enc.Encode(n)
}

func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
