package theme

import "sort"

// APTColors holds the primary colour of each art personality type.
var APTColors = Table{
	"LAEF": "#FF6B6B", // fox
	"LAEC": "#9B59B6", // cat
	"LAMF": "#2C3E50", // owl
	"LAMC": "#00B894", // turtle
	"LREF": "#00CEC9", // chameleon
	"LREC": "#A29BFE", // hedgehog
	"LRMF": "#0984E3", // octopus
	"LRMC": "#6C4C3A", // beaver
	"SAEF": "#FF6348", // butterfly
	"SAEC": "#3742FA", // penguin
	"SAMF": "#05C46B", // parrot
	"SAMC": "#833471", // deer
	"SREF": "#FF7675", // dog
	"SREC": "#F0B27A", // duck
	"SRMF": "#596275", // elephant
	"SRMC": "#2C2C54", // eagle
}

// EmotionColors holds the colour of each daily emotion check-in choice.
var EmotionColors = Table{
	"passion":       "#FF6B6B",
	"imagination":   "#C589E8",
	"serenity":      "#95CDB6",
	"contemplation": "#5E85CC",
	"joy":           "#FFB26B",
	"mystery":       "#8B7BAB",
}

func sortedKeys(t Table) []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func merge(base, over Table) Table {
	out := make(Table, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}
