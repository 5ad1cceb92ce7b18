// Package dot has terse constructors for building element trees, mostly
// in tests and examples. Constructors panic on misuse.
package dot

import ineld "github.com/inesonic/ineld-sub009"

var (
	Continue = ineld.WalkContinue
	Skip     = ineld.WalkSkip
	Stop     = ineld.WalkStop
)

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// Children (list of handles)
func Children(h ...ineld.Handle) []ineld.Handle {
	return h
}

// Run of text
func Text(t *ineld.Tree, s string) ineld.Handle {
	return t.New(&ineld.Text{Text: s})
}

// Paragraph (list of elements)
func Paragraph(t *ineld.Tree, i ...ineld.Handle) ineld.Handle {
	return positional(t, &ineld.Paragraph{}, i)
}

// Frame (list of elements). The first argument is the frame attributes.
func Frame(t *ineld.Tree, attr ineld.Attr, i ...ineld.Handle) ineld.Handle {
	return positional(t, &ineld.Frame{Attr: attr}, i)
}

func positional(t *ineld.Tree, elt ineld.Element, children []ineld.Handle) ineld.Handle {
	h := t.New(elt)
	for _, c := range children {
		must(t.AppendChild(h, c))
	}
	return h
}

// Grouped container (one list of elements per group). At least one group
// always exists.
func Grouped(t *ineld.Tree, attr ineld.Attr, groups ...[]ineld.Handle) ineld.Handle {
	elt := &ineld.Grouped{Attr: attr}
	h := t.New(elt)
	gi := elt.Groups()
	if len(groups) > 1 {
		must(gi.InsertGroupsAfter(0, len(groups)-1))
	}
	for g, run := range groups {
		for _, c := range run {
			must(gi.AppendToGroup(ineld.GroupID(g), c))
		}
	}
	return h
}

// Table of rows x columns singleton cells, each holding a copy of the
// template elements.
func Table(t *ineld.Tree, rows, columns int, template ...ineld.Handle) (ineld.Handle, *ineld.Grid) {
	h, g, err := t.NewTable(rows, columns, template)
	must(err)
	return h, g
}

// Cell of a table built with TableFromCells.
func Cell(row, column, rowSpan, columnSpan int, i ...ineld.Handle) ineld.CellDescription {
	return ineld.CellDescription{
		CellGeometry: ineld.CellGeometry{Row: row, Column: column, RowSpan: rowSpan, ColumnSpan: columnSpan},
		Children:     i,
	}
}

// Table with explicit (possibly merged) cells.
func TableFromCells(t *ineld.Tree, rows, columns int, cells ...ineld.CellDescription) (ineld.Handle, *ineld.Grid) {
	h, g, err := t.NewTableFromCells(rows, columns, cells)
	must(err)
	return h, g
}

var NoAttr = ineld.Attr{}

func KVs(kvs ...string) []ineld.KV {
	var res = make([]ineld.KV, 0, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		res = append(res, ineld.KV{Key: kvs[i], Value: kvs[i+1]})
	}
	return res
}

func Attr(id string, kvs ...string) ineld.Attr {
	return ineld.Attr{Id: id, KVs: KVs(kvs...)}
}
