package omfile

import (
	"context"
	"fmt"
	"strings"
)

// Describe renders a human-readable, indented tree of v and every
// variable reachable from it: name, type, and (for arrays) dimensions,
// chunk shape, and compression scheme. Read-only; errors encountered
// while descending are inlined as "<error: ...>" rather than aborting
// the whole dump, so one unreadable child does not hide its siblings.
func (r *Reader) Describe(ctx context.Context, v *Variable) string {
	var b strings.Builder
	r.describe(ctx, v, 0, &b)
	return b.String()
}

func (r *Reader) describe(ctx context.Context, v *Variable, depth int, b *strings.Builder) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(b, "%s%s (%s)", indent, v.Name, dataTypeString(v.DataType))
	if v.DataType.IsArray() {
		fmt.Fprintf(b, " dims=%v chunks=%v compression=%s scale=%g offset=%g",
			v.Dimensions, v.Chunks, compressionTypeString(v.Compression), v.ScaleFactor, v.AddOffset)
	}
	b.WriteByte('\n')

	for i := range v.Children {
		child, err := r.Child(ctx, v, i)
		if err != nil {
			fmt.Fprintf(b, "%s  <error: %v>\n", indent, err)
			continue
		}
		r.describe(ctx, child, depth+1, b)
	}
}
