package quality

import (
	"regexp"
	"strings"
)

// Dimension tags recognized by the structural heuristics. Unknown tags
// score neutral.
const (
	DimCompleteness      = "completeness"
	DimClarity           = "clarity"
	DimActionability     = "actionability"
	DimDataDriven        = "data_driven"
	DimBrandAlignment    = "brand_alignment"
	DimTechnicalAccuracy = "technical_accuracy"
	DimCreativity        = "creativity"
)

var (
	numberPattern     = regexp.MustCompile(`\b\d+(\.\d+)?%?`)
	listItemPattern   = regexp.MustCompile(`(?m)^\s*(?:[-*+]|\d+\.)\s+\S`)
	allCapsPattern    = regexp.MustCompile(`\b[A-Z]{4,}\b`)
	imperativeOpeners = []string{
		"add", "build", "create", "cut", "define", "increase", "launch",
		"measure", "move", "reduce", "remove", "replace", "rewrite", "run",
		"set", "ship", "split", "test", "track", "update", "use", "write",
	}
	hyperboleWords = []string{
		"revolutionary", "game-changing", "groundbreaking", "world-class",
		"unbelievable", "guaranteed", "best-in-class", "cutting-edge",
	}
)

// structuralScore computes one dimension's heuristic score over the raw
// output text. Creativity has no structural signal and stays neutral,
// as does technical accuracy absent domain checks.
func structuralScore(tag, output string) float64 {
	switch tag {
	case DimCompleteness:
		return scoreCompleteness(output)
	case DimClarity:
		return scoreClarity(output)
	case DimActionability:
		return scoreActionability(output)
	case DimDataDriven:
		return scoreDataDriven(output)
	case DimBrandAlignment:
		return scoreBrandAlignment(output)
	case DimTechnicalAccuracy, DimCreativity:
		return 5.0
	default:
		return 5.0
	}
}

// scoreCompleteness rewards substance: word count and section headers.
func scoreCompleteness(output string) float64 {
	words := len(strings.Fields(output))
	score := 5.0
	switch {
	case words >= 600:
		score += 3
	case words >= 300:
		score += 2
	case words >= 150:
		score += 1
	case words < 50:
		score -= 3
	}
	if countHeadings(output) >= 2 {
		score += 1
	}
	return clamp(score)
}

// scoreClarity rewards headings per unit of text and readable sentence
// length.
func scoreClarity(output string) float64 {
	score := 5.0
	words := len(strings.Fields(output))
	headings := countHeadings(output)
	if words > 0 && headings > 0 {
		// One heading per ~150 words reads well.
		per := float64(words) / float64(headings)
		if per <= 200 {
			score += 2
		} else {
			score += 1
		}
	}
	if avg := averageSentenceLength(output); avg > 0 {
		switch {
		case avg <= 25:
			score += 1
		case avg > 40:
			score -= 2
		}
	}
	return clamp(score)
}

// scoreActionability rewards list structure and imperative phrasing.
func scoreActionability(output string) float64 {
	score := 4.0
	items := len(listItemPattern.FindAllString(output, -1))
	switch {
	case items >= 5:
		score += 3
	case items >= 2:
		score += 2
	case items == 1:
		score += 1
	}
	imperatives := 0
	for _, line := range strings.Split(output, "\n") {
		first := firstWord(line)
		for _, verb := range imperativeOpeners {
			if first == verb {
				imperatives++
				break
			}
		}
	}
	if imperatives >= 3 {
		score += 2
	} else if imperatives >= 1 {
		score += 1
	}
	return clamp(score)
}

// scoreDataDriven rewards numeric and percentage density.
func scoreDataDriven(output string) float64 {
	words := len(strings.Fields(output))
	if words == 0 {
		return 0
	}
	numbers := len(numberPattern.FindAllString(output, -1))
	density := float64(numbers) / float64(words) * 100
	switch {
	case density >= 5:
		return 9
	case density >= 2:
		return 7.5
	case density >= 0.5:
		return 6
	case numbers > 0:
		return 5
	default:
		return 3
	}
}

// scoreBrandAlignment starts neutral-positive and penalizes shouting
// and hyperbole.
func scoreBrandAlignment(output string) float64 {
	score := 7.0
	lower := strings.ToLower(output)
	for _, word := range hyperboleWords {
		score -= float64(strings.Count(lower, word))
	}
	caps := len(allCapsPattern.FindAllString(output, -1))
	if caps > 3 {
		score -= float64(caps-3) * 0.5
	}
	return clamp(score)
}

func countHeadings(output string) int {
	count := 0
	for _, line := range strings.Split(output, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			count++
		}
	}
	return count
}

func averageSentenceLength(output string) float64 {
	sentences := strings.FieldsFunc(output, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	if len(sentences) == 0 {
		return 0
	}
	total := 0
	for _, s := range sentences {
		total += len(strings.Fields(s))
	}
	return float64(total) / float64(len(sentences))
}

func firstWord(line string) string {
	trimmed := strings.TrimLeft(strings.TrimSpace(line), "-*+0123456789. ")
	fields := strings.Fields(strings.ToLower(trimmed))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
