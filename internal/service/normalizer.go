package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/recipefy/backend/internal/logger"
	"github.com/recipefy/backend/internal/types"
)

const (
	DefaultCookingTime = "30 minutes"
	DefaultServings    = "4 servings"
	DefaultDifficulty  = "Beginner"

	missingIngredientsPlaceholder  = "Please check the original response for ingredients"
	missingInstructionsPlaceholder = "Please check the original response for cooking instructions"
)

var (
	fenceMarker  = regexp.MustCompile("```(?:json)?\\s*")
	bulletPrefix = regexp.MustCompile(`^[-*•]\s*`)
	numberPrefix = regexp.MustCompile(`^\d+\.\s*`)
)

// Outcome tells how a recipe was obtained from the model text.
type Outcome string

const (
	// OutcomeParsed means the reply contained a usable JSON recipe.
	OutcomeParsed Outcome = "parsed"
	// OutcomeRecovered means the recipe was rebuilt line by line from prose.
	OutcomeRecovered Outcome = "recovered"
)

// Normalized is the result of decoding one model reply.
type Normalized struct {
	Recipe  *types.Recipe
	Outcome Outcome
	// Raw holds the original reply when Outcome is OutcomeRecovered.
	Raw string
}

type NormalizerOptions struct {
	// ApplyDefaults fills missing cookingTime, servings and difficulty.
	ApplyDefaults bool
	// HeuristicFallback rebuilds a recipe from unparseable replies instead
	// of failing with ErrUnparseableRecipe.
	HeuristicFallback bool
}

// Normalizer turns untrusted model text into a Recipe.
type Normalizer struct {
	opts NormalizerOptions
}

func NewNormalizer(opts NormalizerOptions) *Normalizer {
	return &Normalizer{opts: opts}
}

// Normalize decodes raw. With HeuristicFallback enabled it never returns an error.
func (n *Normalizer) Normalize(raw, query string) (*Normalized, error) {
	cleaned := stripFences(raw)

	recipe, err := decodeRecipe(sliceObject(cleaned))
	if err == nil {
		n.applyDefaults(recipe)
		return &Normalized{Recipe: recipe, Outcome: OutcomeParsed}, nil
	}

	if !n.opts.HeuristicFallback {
		return nil, fmt.Errorf("%w: %w", ErrUnparseableRecipe, err)
	}

	logger.Warn("Model reply was not a usable JSON recipe, extracting from text",
		zap.Error(err),
		zap.Int("length", len(raw)),
	)
	recipe = extract(cleaned, query)
	n.applyDefaults(recipe)
	return &Normalized{Recipe: recipe, Outcome: OutcomeRecovered, Raw: raw}, nil
}

func (n *Normalizer) applyDefaults(r *types.Recipe) {
	if !n.opts.ApplyDefaults {
		return
	}
	if r.CookingTime == "" {
		r.CookingTime = DefaultCookingTime
	}
	if r.Servings == "" {
		r.Servings = DefaultServings
	}
	if r.Difficulty == "" {
		r.Difficulty = DefaultDifficulty
	}
}

func stripFences(raw string) string {
	return strings.TrimSpace(fenceMarker.ReplaceAllString(strings.TrimSpace(raw), ""))
}

// sliceObject keeps the text between the first '{' and the last '}'.
func sliceObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return s
	}
	return s[start : end+1]
}

func decodeRecipe(s string) (*types.Recipe, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, fmt.Errorf("reply is not a JSON object")
	}

	name, _ := scalarText(fields["name"])
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("recipe has no name")
	}
	if !supplied(fields["ingredients"]) || !supplied(fields["instructions"]) {
		return nil, fmt.Errorf("recipe is missing ingredients or instructions")
	}

	r := &types.Recipe{
		Name:         name,
		Ingredients:  textList(fields["ingredients"]),
		Instructions: textList(fields["instructions"]),
		Tips:         textList(fields["tips"]),
	}
	r.CookingTime, _ = scalarText(fields["cookingTime"])
	r.Servings, _ = scalarText(fields["servings"])
	r.Difficulty, _ = scalarText(fields["difficulty"])
	return r, nil
}

func present(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// supplied reports whether a required field carries a value. Empty strings,
// false and zero count as missing, like an absent key.
func supplied(raw json.RawMessage) bool {
	if !present(raw) {
		return false
	}
	switch string(bytes.TrimSpace(raw)) {
	case `""`, "false", "0":
		return false
	}
	return true
}

// scalarText renders a JSON string, number or boolean as text.
func scalarText(raw json.RawMessage) (string, bool) {
	if !present(raw) {
		return "", false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

// textList returns the array elements as text in source order. Anything that
// is not an array becomes an empty list; null elements are dropped.
func textList(raw json.RawMessage) []string {
	out := []string{}

	var elems []json.RawMessage
	if !present(raw) || json.Unmarshal(raw, &elems) != nil {
		return out
	}
	for _, elem := range elems {
		if !present(elem) {
			continue
		}
		if s, ok := scalarText(elem); ok {
			out = append(out, s)
			continue
		}
		var compact bytes.Buffer
		if json.Compact(&compact, elem) == nil {
			out = append(out, compact.String())
		}
	}
	return out
}

type section int

const (
	sectionNone section = iota
	sectionIngredients
	sectionInstructions
	sectionTips
)

// extract rebuilds a recipe from free text. Header lines mentioning
// ingredients, instructions/steps or tips switch the active section and are
// not kept; other lines are appended to the active section in order.
func extract(text, query string) *types.Recipe {
	r := &types.Recipe{
		Name:         heuristicName(query),
		Ingredients:  []string{},
		Instructions: []string{},
		Tips:         []string{},
	}

	current := sectionNone
	for _, line := range strings.Split(text, "\n") {
		clean := strings.TrimSpace(line)
		if clean == "" {
			continue
		}

		lower := strings.ToLower(clean)
		switch {
		case strings.Contains(lower, "ingredient"):
			current = sectionIngredients
			continue
		case strings.Contains(lower, "instruction"), strings.Contains(lower, "step"):
			current = sectionInstructions
			continue
		case strings.Contains(lower, "tip"):
			current = sectionTips
			continue
		}

		item := strings.TrimSpace(bulletPrefix.ReplaceAllString(clean, ""))
		switch current {
		case sectionIngredients:
			r.Ingredients = appendNonEmpty(r.Ingredients, item)
		case sectionInstructions:
			r.Instructions = appendNonEmpty(r.Instructions, strings.TrimSpace(numberPrefix.ReplaceAllString(item, "")))
		case sectionTips:
			r.Tips = appendNonEmpty(r.Tips, item)
		}
	}

	if len(r.Ingredients) == 0 {
		r.Ingredients = []string{missingIngredientsPlaceholder}
	}
	if len(r.Instructions) == 0 {
		r.Instructions = []string{missingInstructionsPlaceholder}
	}
	return r
}

func heuristicName(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return "Recipe"
	}
	// Casers keep state, so each call gets its own
	return cases.Title(language.English).String(query) + " Recipe"
}

func appendNonEmpty(list []string, item string) []string {
	if item == "" {
		return list
	}
	return append(list, item)
}
