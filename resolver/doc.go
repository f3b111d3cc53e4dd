// Package resolver matches human-supplied names against what a workbook
// actually contains.
//
// # Identifiers
//
// Record labels are typed by hand and drift: "Team-X", "team x" and
// "TEAM_X" name the same team. [Normalize] projects a label onto a
// canonical form (Unicode compatibility folding, upper case, no whitespace,
// no '-' or '_'), and [ResolveIdentifier] matches in two tiers, exact on
// the normalised form first and then partial containment in either
// direction. Within a tier the first block in scan order wins.
//
//	b, ok := resolver.ResolveIdentifier(blocks, "team x", "payments")
//
// # Sheets
//
// [ResolveSheet] picks the data sheet by an exact parameterised name, then a
// relaxed pattern scan, then a list of fallback names:
//
//	m, ok := resolver.ResolveSheet(wb.SheetNames(), resolver.SheetSpec{
//	    Pattern:   "PI{PI_NUMBER} - Capacity",
//	    Param:     "14",
//	    Fallbacks: []string{"Capacity"},
//	})
package resolver
