// Package render turns a partition tree into draw commands.
//
// [Commands] is a pure function of the tree: it walks the traversal and
// emits one [KindRect] per node boundary and one [KindCircle] per object,
// projected onto two axes. Back-ends consume the commands without touching
// the tree:
//
//   - [Rasterize]: Braille terminal canvas
//   - [SVG]: standalone SVG document
//
// The caller owns the output (stdout, file, TUI pane).
package render
