package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"go_procure_backend/models"
	"go_procure_backend/pkg/logging"
	"go_procure_backend/platform/logbus"
	"go_procure_backend/repository"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

const (
	// minFuzzyScore filters candidate search output.
	minFuzzyScore = 60.0
	// shortcutScore accepts the top candidate without AI arbitration.
	shortcutScore = 85.0
	// retrieveLimit bounds the catalog rows pulled per search.
	retrieveLimit = 50
	// arbitrationCandidates is how many top candidates the AI sees.
	arbitrationCandidates = 5
)

// MatchingService runs deterministic candidate retrieval plus the
// confidence-gated match decision for one requirement at a time.
type MatchingService struct {
	inventory repository.InventoryRepository
	ai        Completer
	bus       *logbus.Bus
}

func NewMatchingService(inventory repository.InventoryRepository, ai Completer, bus *logbus.Bus) *MatchingService {
	return &MatchingService{inventory: inventory, ai: ai, bus: bus}
}

// similarity is a symmetric, token-order-insensitive score in [0,100].
// Identical non-empty strings score 100; an empty side scores 0.
func similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 100
	}
	return float64(fuzzy.TokenSetRatio(a, b))
}

// combineScores folds the three field scores into one. An alias that
// beats the name dominates (vague requirements like "综合布线" match
// whole categories, not single products); otherwise spec shifts the
// weight only when one was supplied.
func combineScores(nameScore, aliasScore, specScore float64, hasSpec bool) float64 {
	if aliasScore > nameScore {
		return aliasScore*0.6 + nameScore*0.2 + specScore*0.2
	}
	if hasSpec {
		return nameScore*0.7 + specScore*0.3
	}
	return nameScore
}

// searchTerms keeps whitespace tokens of at least two runes.
func searchTerms(name string) []string {
	var terms []string
	for _, token := range strings.Fields(name) {
		if utf8.RuneCountInString(token) >= 2 {
			terms = append(terms, token)
		}
	}
	return terms
}

// FuzzySearch retrieves and scores catalog candidates. Deterministic
// for a fixed catalog snapshot: ties keep retrieval order.
func (s *MatchingService) FuzzySearch(ctx context.Context, name, spec string, limit int) ([]models.ScoredCandidate, error) {
	if limit <= 0 {
		limit = 10
	}
	candidates, err := s.inventory.SearchBySubstring(ctx, searchTerms(name), retrieveLimit)
	if err != nil {
		return nil, err
	}

	var scored []models.ScoredCandidate
	for _, item := range candidates {
		nameScore := similarity(name, item.ProductName)
		aliasScore := similarity(name, item.CategoryAlias)
		specScore := 0.0
		if spec != "" && item.Spec != "" {
			specScore = similarity(spec, item.Spec)
		}
		total := combineScores(nameScore, aliasScore, specScore, spec != "")
		if total < minFuzzyScore {
			continue
		}
		scored = append(scored, models.ScoredCandidate{AssetInventory: item, FuzzyScore: total})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].FuzzyScore > scored[j].FuzzyScore
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

type arbitrationResult struct {
	MatchedID  *int64  `json:"matched_id"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// Match resolves one requirement to a terminal outcome. The error
// return is reserved for catalog read failures, which abort the task;
// AI unavailability never propagates out of this method.
func (s *MatchingService) Match(ctx context.Context, sessionID string, req models.RequirementItem, parsedName, parsedSpec string) (models.MatchOutcome, error) {
	s.log(sessionID, models.LogLevelInfo, fmt.Sprintf("--- matching requirement: %s ---", parsedName))

	candidates, err := s.FuzzySearch(ctx, parsedName, parsedSpec, 10)
	if err != nil {
		return models.MatchOutcome{}, err
	}

	outcome := models.MatchOutcome{
		Source:     models.MatchSourceNone,
		Confidence: 0,
		Reason:     "no candidates",
		ParsedName: parsedName,
		ParsedSpec: parsedSpec,
	}
	if len(candidates) == 0 {
		s.log(sessionID, models.LogLevelWarn, "no candidates found")
		return outcome, nil
	}

	top := candidates[0]
	if top.FuzzyScore >= shortcutScore {
		reason := fmt.Sprintf("fuzzy match %.0f%%", top.FuzzyScore)
		if top.CategoryAlias != "" {
			reason += fmt.Sprintf(" (category: %s)", top.CategoryAlias)
		}
		s.log(sessionID, models.LogLevelInfo,
			fmt.Sprintf("fuzzy shortcut accepted: %s (%.0f%%)", top.ProductName, top.FuzzyScore))
		inv := top.AssetInventory
		outcome.Source = models.MatchSourceFuzzy
		outcome.MatchedID = &inv.ID
		outcome.Matched = &inv
		outcome.Confidence = top.FuzzyScore / 100
		outcome.Reason = reason
		return outcome, nil
	}

	// arbitration sees the original, unparsed requirement so that a bad
	// normalization cannot compound into a bad match
	return s.arbitrate(ctx, sessionID, req, candidates, outcome), nil
}

func (s *MatchingService) arbitrate(ctx context.Context, sessionID string, req models.RequirementItem, candidates []models.ScoredCandidate, outcome models.MatchOutcome) models.MatchOutcome {
	topN := candidates
	if len(topN) > arbitrationCandidates {
		topN = topN[:arbitrationCandidates]
	}
	s.log(sessionID, models.LogLevelDebug, fmt.Sprintf("arbitrating among %d candidate(s)", len(topN)))

	prompt := buildMatchPrompt(req.Name, req.Spec, topN)
	response, err := s.ai.Complete(ctx, sessionID, prompt, fmt.Sprintf("match '%s'", req.Name))
	if err != nil {
		return s.fallback(sessionID, candidates[0], outcome,
			fmt.Sprintf("AI error, fell back to fuzzy: %s", truncateForReason(err.Error(), 200)))
	}

	var result arbitrationResult
	if err := decodeModelJSON(response, &result, jsonObjectPattern); err != nil {
		logging.Logger.Warn("arbitration decode failed", "error", err)
		return s.fallback(sessionID, candidates[0], outcome,
			"AI error, fell back to fuzzy: arbitration response unparsable")
	}

	if result.MatchedID != nil {
		for _, c := range topN {
			if c.ID == *result.MatchedID {
				inv := c.AssetInventory
				reason := result.Reason
				if reason == "" {
					reason = "AI match"
				}
				s.log(sessionID, models.LogLevelInfo,
					fmt.Sprintf("AI matched id=%d, confidence=%.0f%%", inv.ID, clamp01(result.Confidence)*100))
				outcome.Source = models.MatchSourceAI
				outcome.MatchedID = &inv.ID
				outcome.Matched = &inv
				outcome.Confidence = clamp01(result.Confidence)
				outcome.Reason = reason
				return outcome
			}
		}
		// an id outside the submitted candidates is treated as no match
		s.log(sessionID, models.LogLevelWarn,
			fmt.Sprintf("AI returned unknown candidate id %d", *result.MatchedID))
	}

	return s.fallback(sessionID, candidates[0], outcome,
		fmt.Sprintf("AI found no match, fell back to fuzzy: %s", candidates[0].ProductName))
}

// fallback accepts the top fuzzy candidate at half its score.
func (s *MatchingService) fallback(sessionID string, top models.ScoredCandidate, outcome models.MatchOutcome, reason string) models.MatchOutcome {
	s.log(sessionID, models.LogLevelWarn, reason)
	inv := top.AssetInventory
	outcome.Source = models.MatchSourceFallback
	outcome.MatchedID = &inv.ID
	outcome.Matched = &inv
	outcome.Confidence = top.FuzzyScore / 100 * 0.5
	outcome.Reason = reason
	return outcome
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func (s *MatchingService) log(sessionID, level, message string) {
	if s.bus != nil {
		s.bus.Log(sessionID, level, message)
	}
}
