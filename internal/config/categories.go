package config

// CategoryWeights orders help output. Unknown categories sort last.
var CategoryWeights = map[string]int{
	"🕯️ Information": 0,
	"🛡️ Moderation":  20,
	"🛠️ Maintenance": 60,
	"misc":           90,
}

// CategoryWeight returns the sort weight for a category.
func CategoryWeight(category string) int {
	if w, ok := CategoryWeights[category]; ok {
		return w
	}
	return 100
}
