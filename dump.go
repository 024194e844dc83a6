package idscodec

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// maxQuoted is the longest char leaf Dump prints inline.
const maxQuoted = 64

// Dump writes a human-readable listing of an exported buffer to w, one
// element per line, indented by nesting depth. It reads the wire layout
// directly, so repeated names and other oddities show up as written.
func Dump(w io.Writer, buf []byte) error {
	if w == nil {
		return ErrNilIO
	}
	if err := Inspect(buf); err != nil {
		return err
	}
	src := NewSource(buf[1:])
	root, err := src.Root()
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "version %d, marker 0x%08x, %d bytes\n", buf[0], Marker, len(buf))
	if err := dumpVector(bw, root, 1, 0); err != nil {
		bw.Flush()
		return err
	}
	return bw.Flush()
}

// DumpString is Dump into a string; errors are appended to the output.
func DumpString(buf []byte) string {
	var b strings.Builder
	if err := Dump(&b, buf); err != nil {
		fmt.Fprintf(&b, "!error: %v\n", err)
	}
	return b.String()
}

func dumpVector(w *bufio.Writer, v View, start, depth int) error {
	indent := strings.Repeat("  ", depth)
	for i := start; i < v.Len(); {
		name, err := v.Key(i)
		if err != nil {
			return err
		}
		if v.Kind(i+1) != KindVector {
			leaf, err := readLeaf(v, i)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s%s: %v%v", indent, name, leaf.Type, leaf.Shape)
			if leaf.Type == Char && len(leaf.Data) <= maxQuoted {
				fmt.Fprintf(w, " %q\n", leaf.Data)
			} else {
				fmt.Fprintf(w, " %d bytes\n", len(leaf.Data))
			}
			i += 4
			continue
		}
		elements, err := v.Vector(i + 1)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s%s: aos[%d]\n", indent, name, elements.Len())
		for j := 0; j < elements.Len(); j++ {
			elem, err := elements.Vector(j)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s  [%d]\n", indent, j)
			if err := dumpVector(w, elem, 0, depth+2); err != nil {
				return err
			}
		}
		i += 2
	}
	return nil
}
