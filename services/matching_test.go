package services

import (
	"context"
	"errors"
	"testing"

	"go_procure_backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombineScores(t *testing.T) {
	// alias beating the name dominates the blend
	assert.InDelta(t, 78.0, combineScores(70, 90, 50, true), 0.001)
	// no alias advantage: name/spec split 70/30
	assert.InDelta(t, 68.0, combineScores(80, 0, 40, true), 0.001)
	// no spec supplied: name alone
	assert.InDelta(t, 80.0, combineScores(80, 0, 0, false), 0.001)
	// alias tie does not dominate
	assert.InDelta(t, 75.0, combineScores(75, 75, 0, false), 0.001)
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 0.0, similarity("", "交换机"))
	assert.Equal(t, 0.0, similarity("交换机", ""))
	assert.Equal(t, 100.0, similarity("交换机", "交换机"))
	score := similarity("千兆交换机", "桌子")
	assert.Less(t, score, 100.0)
}

func TestSearchTerms(t *testing.T) {
	assert.Equal(t, []string{"核心交换机", "48口"}, searchTerms("核心交换机 48口 a"))
	assert.Empty(t, searchTerms("a b"))
}

func TestFuzzySearchFiltersAndSorts(t *testing.T) {
	inventory := &stubInventory{items: []models.AssetInventory{
		{ID: 1, ProductName: "办公桌"},
		{ID: 2, ProductName: "交换机"},
		{ID: 3, ProductName: "交换机", Spec: "24口"},
	}}
	svc := NewMatchingService(inventory, &stubCompleter{}, nil)

	scored, err := svc.FuzzySearch(context.Background(), "交换机", "", 10)
	require.NoError(t, err)
	require.Len(t, scored, 2)
	// identical names score 100; the unrelated desk is filtered out
	for _, c := range scored {
		assert.GreaterOrEqual(t, c.FuzzyScore, minFuzzyScore)
		assert.Equal(t, "交换机", c.ProductName)
	}
}

func TestMatchNoCandidates(t *testing.T) {
	ai := &stubCompleter{}
	svc := NewMatchingService(&stubInventory{}, ai, nil)

	req := models.RequirementItem{Name: "未知设备XYZ"}
	outcome, err := svc.Match(context.Background(), "", req, "未知设备XYZ", "")
	require.NoError(t, err)

	assert.Equal(t, models.MatchSourceNone, outcome.Source)
	assert.Nil(t, outcome.MatchedID)
	assert.Equal(t, 0.0, outcome.Confidence)
	assert.Equal(t, "no candidates", outcome.Reason)
	assert.Zero(t, ai.callCount(), "arbitration must not run without candidates")
}

func TestMatchFuzzyShortcutSkipsAI(t *testing.T) {
	inventory := &stubInventory{items: []models.AssetInventory{
		{ID: 7, ProductName: "交换机", CategoryAlias: "网络设备"},
	}}
	ai := &stubCompleter{}
	svc := NewMatchingService(inventory, ai, nil)

	req := models.RequirementItem{Name: "交换机"}
	outcome, err := svc.Match(context.Background(), "", req, "交换机", "")
	require.NoError(t, err)

	assert.Equal(t, models.MatchSourceFuzzy, outcome.Source)
	require.NotNil(t, outcome.MatchedID)
	assert.Equal(t, int64(7), *outcome.MatchedID)
	assert.InDelta(t, 1.0, outcome.Confidence, 0.001)
	assert.Equal(t, "fuzzy match 100% (category: 网络设备)", outcome.Reason)
	assert.Zero(t, ai.callCount(), "score above the shortcut threshold must not call the AI")
}

// midScoreSetup yields a single candidate scoring 70: identical name,
// requirement spec supplied but absent from the catalog row.
func midScoreSetup(ai Completer) (*MatchingService, models.RequirementItem) {
	inventory := &stubInventory{items: []models.AssetInventory{
		{ID: 3, ProductName: "核心交换机"},
	}}
	svc := NewMatchingService(inventory, ai, nil)
	return svc, models.RequirementItem{Name: "核心交换机 48口", Spec: "48口"}
}

func TestMatchArbitrationAccepted(t *testing.T) {
	ai := &stubCompleter{responses: []string{
		`{"matched_id": 3, "confidence": 0.9, "reason": "name and port count line up"}`,
	}}
	svc, req := midScoreSetup(ai)

	outcome, err := svc.Match(context.Background(), "", req, "核心交换机", "48口")
	require.NoError(t, err)

	assert.Equal(t, models.MatchSourceAI, outcome.Source)
	require.NotNil(t, outcome.MatchedID)
	assert.Equal(t, int64(3), *outcome.MatchedID)
	assert.InDelta(t, 0.9, outcome.Confidence, 0.001)
	assert.Equal(t, "name and port count line up", outcome.Reason)
	assert.Equal(t, 1, ai.callCount())
}

func TestMatchArbitrationNullID(t *testing.T) {
	ai := &stubCompleter{responses: []string{
		`{"matched_id": null, "confidence": 0, "reason": "nothing fits"}`,
	}}
	svc, req := midScoreSetup(ai)

	outcome, err := svc.Match(context.Background(), "", req, "核心交换机", "48口")
	require.NoError(t, err)

	assert.Equal(t, models.MatchSourceFallback, outcome.Source)
	require.NotNil(t, outcome.MatchedID)
	assert.Equal(t, int64(3), *outcome.MatchedID)
	// fuzzy score 70 discounted by half
	assert.InDelta(t, 0.35, outcome.Confidence, 0.001)
	assert.Contains(t, outcome.Reason, "AI found no match, fell back to fuzzy")
}

func TestMatchArbitrationUnknownID(t *testing.T) {
	ai := &stubCompleter{responses: []string{
		`{"matched_id": 999, "confidence": 0.8, "reason": "made up"}`,
	}}
	svc, req := midScoreSetup(ai)

	outcome, err := svc.Match(context.Background(), "", req, "核心交换机", "48口")
	require.NoError(t, err)

	// an id outside the submitted candidates degrades to the fallback
	assert.Equal(t, models.MatchSourceFallback, outcome.Source)
	assert.InDelta(t, 0.35, outcome.Confidence, 0.001)
}

func TestMatchArbitrationAIError(t *testing.T) {
	ai := &stubCompleter{err: errors.New("connection refused")}
	svc, req := midScoreSetup(ai)

	outcome, err := svc.Match(context.Background(), "", req, "核心交换机", "48口")
	require.NoError(t, err, "AI unavailability must not abort the item")

	assert.Equal(t, models.MatchSourceFallback, outcome.Source)
	require.NotNil(t, outcome.MatchedID)
	assert.Equal(t, int64(3), *outcome.MatchedID)
	assert.InDelta(t, 0.35, outcome.Confidence, 0.001)
	assert.Contains(t, outcome.Reason, "AI error, fell back to fuzzy")
	assert.Contains(t, outcome.Reason, "connection refused")
}

func TestMatchArbitrationUnparsableResponse(t *testing.T) {
	ai := &stubCompleter{responses: []string{"sorry, I cannot help with that"}}
	svc, req := midScoreSetup(ai)

	outcome, err := svc.Match(context.Background(), "", req, "核心交换机", "48口")
	require.NoError(t, err)

	assert.Equal(t, models.MatchSourceFallback, outcome.Source)
	assert.Contains(t, outcome.Reason, "arbitration response unparsable")
}

func TestMatchCatalogErrorPropagates(t *testing.T) {
	inventory := &stubInventory{searchErr: errors.New("db down")}
	svc := NewMatchingService(inventory, &stubCompleter{}, nil)

	_, err := svc.Match(context.Background(), "", models.RequirementItem{Name: "交换机"}, "交换机", "")
	require.Error(t, err)
}

func TestArbitrationPromptUsesOriginalRequirement(t *testing.T) {
	ai := &stubCompleter{responses: []string{
		`{"matched_id": null, "confidence": 0, "reason": ""}`,
	}}
	svc, req := midScoreSetup(ai)

	_, err := svc.Match(context.Background(), "", req, "核心交换机", "48口")
	require.NoError(t, err)

	require.Len(t, ai.prompts, 1)
	// the unparsed requirement name goes into the prompt, not the split one
	assert.Contains(t, ai.prompts[0], "核心交换机 48口")
}
