package merge

import "github.com/emrgen/lineage/internal/model"

var queryLabels = map[model.Kind]string{
	model.KindPerson:     "Merge Person",
	model.KindFamily:     "Merge Family",
	model.KindEvent:      "Merge Event",
	model.KindPlace:      "Merge Place",
	model.KindSource:     "Merge Source",
	model.KindCitation:   "Merge Citation",
	model.KindRepository: "Merge Repository",
	model.KindMedia:      "Merge Media",
	model.KindNote:       "Merge Note",
}

// Label returns the transaction label used for merges of kind.
func Label(kind model.Kind) string {
	return queryLabels[kind]
}
