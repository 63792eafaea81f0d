package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go_procure_backend/models"
	"go_procure_backend/platform/cache"
	"go_procure_backend/platform/logbus"
)

// specMarkerPattern gates the AI split: only names that visibly embed
// spec fragments are worth a completion call. Covers N-inch size forms,
// port counts, capacity/bandwidth markers and high-signal tokens.
var specMarkerPattern = regexp.MustCompile(
	`(?i)\d+(\.\d+)?\s*(寸|英寸|inch(es)?|口|port(s)?|芯|核|gb|tb|mbps|gbps|mm|米|u)|poe|万兆|千兆|百兆`)

// RequirementParser normalizes noisy requirement names. Pattern-clean
// names pass through untouched; the rest go through an AI split with a
// cached result, and any AI failure degrades to the raw name.
type RequirementParser struct {
	ai    Completer
	cache cache.Service // may be nil
	bus   *logbus.Bus
}

func NewRequirementParser(ai Completer, cacheService cache.Service, bus *logbus.Bus) *RequirementParser {
	return &RequirementParser{ai: ai, cache: cacheService, bus: bus}
}

type splitResult struct {
	ProductName string `json:"product_name"`
	Spec        string `json:"spec"`
}

// Parse returns the normalized name and the combined spec for one item.
// The combined spec is the AI-derived spec followed by the originally
// supplied one, space-separated, whichever of the two exist.
func (p *RequirementParser) Parse(ctx context.Context, sessionID string, item models.RequirementItem) (string, string) {
	name := strings.TrimSpace(item.Name)
	if !specMarkerPattern.MatchString(name) {
		return name, strings.TrimSpace(item.Spec)
	}

	split := p.splitNameSpec(ctx, sessionID, name)
	return split.ProductName, combineSpecs(split.Spec, item.Spec)
}

func (p *RequirementParser) splitNameSpec(ctx context.Context, sessionID, name string) splitResult {
	cacheKey := "split:" + name
	if p.cache != nil {
		if cached, ok := p.cache.Get(ctx, cacheKey); ok {
			var result splitResult
			if err := json.Unmarshal([]byte(cached), &result); err == nil && result.ProductName != "" {
				return result
			}
		}
	}

	response, err := p.ai.Complete(ctx, sessionID, buildSplitPrompt(name), fmt.Sprintf("name/spec split '%s'", name))
	if err != nil {
		p.warn(sessionID, fmt.Sprintf("name/spec split failed for '%s', keeping raw name: %v", name, err))
		return splitResult{ProductName: name}
	}

	var result splitResult
	if err := decodeModelJSON(response, &result, jsonObjectPattern); err != nil {
		p.warn(sessionID, fmt.Sprintf("name/spec split returned undecodable response for '%s', keeping raw name", name))
		return splitResult{ProductName: name}
	}
	result.ProductName = strings.TrimSpace(result.ProductName)
	result.Spec = strings.TrimSpace(result.Spec)
	if result.ProductName == "" {
		result.ProductName = name
	}

	if p.cache != nil {
		if data, err := json.Marshal(result); err == nil {
			p.cache.Set(ctx, cacheKey, string(data), 24*time.Hour)
		}
	}
	return result
}

func combineSpecs(aiSpec, originalSpec string) string {
	aiSpec = strings.TrimSpace(aiSpec)
	originalSpec = strings.TrimSpace(originalSpec)
	switch {
	case aiSpec != "" && originalSpec != "":
		return aiSpec + " " + originalSpec
	case aiSpec != "":
		return aiSpec
	default:
		return originalSpec
	}
}

func (p *RequirementParser) warn(sessionID, message string) {
	if p.bus != nil {
		p.bus.Log(sessionID, models.LogLevelWarn, message)
	}
}
