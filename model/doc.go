// Package model holds the value types produced by block extraction.
//
// A [Block] identifies one occurrence of a record inside a grid. A [Record]
// is the typed projection of a block through a layout template. [Totals]
// folds records that share an identifier, and an [Aggregate] is the result
// of one aggregation pass:
//
//	blocks := layout.Scan(g, tmpl)
//	rec := record.Extract(g, blocks[0], tmpl)
//	fmt.Println(rec.Categories["quality"], rec.Total)
//
// All types are plain values. They are built fresh for every call and are
// never shared between concurrent passes.
package model
