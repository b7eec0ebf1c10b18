package model

// PredefinedLabels are offered to clients as label suggestions. Links may
// carry any other free-text label as well.
var PredefinedLabels = []string{
	"Work",
	"Personal",
	"Reading",
	"Research",
	"Tools",
	"Inspiration",
}
