package services

import (
	"context"
	"errors"
	"testing"

	"go_procure_backend/models"
	"go_procure_backend/platform/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpecMarkerPattern(t *testing.T) {
	matching := []string{
		"24口千兆交换机",
		"55寸显示器",
		"27英寸 4K 显示器",
		"8芯光纤",
		"16核服务器",
		"512GB固态硬盘",
		"POE交换机",
		"万兆网卡",
		"2.5寸硬盘",
	}
	for _, name := range matching {
		assert.True(t, specMarkerPattern.MatchString(name), name)
	}

	clean := []string{"办公桌", "交换机", "显示器支架", "网线"}
	for _, name := range clean {
		assert.False(t, specMarkerPattern.MatchString(name), name)
	}
}

func TestParsePassThroughWithoutMarkers(t *testing.T) {
	ai := &stubCompleter{}
	p := NewRequirementParser(ai, nil, nil)

	name, spec := p.Parse(context.Background(), "", models.RequirementItem{Name: " 办公桌 ", Spec: " 胡桃色 "})
	assert.Equal(t, "办公桌", name)
	assert.Equal(t, "胡桃色", spec)
	assert.Zero(t, ai.callCount(), "clean names must not trigger a completion call")
}

func TestParseSplitsEmbeddedSpec(t *testing.T) {
	ai := &stubCompleter{responses: []string{
		`{"product_name": "交换机", "spec": "24口 千兆"}`,
	}}
	p := NewRequirementParser(ai, nil, nil)

	name, spec := p.Parse(context.Background(), "", models.RequirementItem{Name: "24口千兆交换机"})
	assert.Equal(t, "交换机", name)
	assert.Equal(t, "24口 千兆", spec)
	assert.Equal(t, 1, ai.callCount())
}

func TestParseCombinesAIAndOriginalSpec(t *testing.T) {
	ai := &stubCompleter{responses: []string{
		`{"product_name": "显示器", "spec": "55寸"}`,
	}}
	p := NewRequirementParser(ai, nil, nil)

	name, spec := p.Parse(context.Background(), "",
		models.RequirementItem{Name: "55寸显示器", Spec: "壁挂安装"})
	assert.Equal(t, "显示器", name)
	assert.Equal(t, "55寸 壁挂安装", spec)
}

func TestParseFallsBackOnAIError(t *testing.T) {
	ai := &stubCompleter{err: errors.New("service unavailable")}
	p := NewRequirementParser(ai, nil, nil)

	name, spec := p.Parse(context.Background(), "",
		models.RequirementItem{Name: "24口千兆交换机", Spec: "机架式"})
	assert.Equal(t, "24口千兆交换机", name, "failed splits keep the raw name")
	assert.Equal(t, "机架式", spec)
}

func TestParseFallsBackOnUndecodableSplit(t *testing.T) {
	ai := &stubCompleter{responses: []string{"无法解析"}}
	p := NewRequirementParser(ai, nil, nil)

	name, _ := p.Parse(context.Background(), "", models.RequirementItem{Name: "24口千兆交换机"})
	assert.Equal(t, "24口千兆交换机", name)
}

func TestParseCachesSplitResult(t *testing.T) {
	ai := &stubCompleter{responses: []string{
		`{"product_name": "交换机", "spec": "24口"}`,
	}}
	p := NewRequirementParser(ai, cache.NewService(nil), nil)

	item := models.RequirementItem{Name: "24口交换机"}
	name1, spec1 := p.Parse(context.Background(), "", item)
	name2, spec2 := p.Parse(context.Background(), "", item)

	assert.Equal(t, name1, name2)
	assert.Equal(t, spec1, spec2)
	assert.Equal(t, 1, ai.callCount(), "second parse of the same name must hit the cache")
}

func TestParseEmptySplitNameKeepsRaw(t *testing.T) {
	ai := &stubCompleter{responses: []string{
		`{"product_name": "", "spec": "24口"}`,
	}}
	p := NewRequirementParser(ai, nil, nil)

	name, spec := p.Parse(context.Background(), "", models.RequirementItem{Name: "24口交换机"})
	assert.Equal(t, "24口交换机", name)
	assert.Equal(t, "24口", spec)
}

func TestCombineSpecs(t *testing.T) {
	assert.Equal(t, "a b", combineSpecs(" a ", " b "))
	assert.Equal(t, "a", combineSpecs("a", ""))
	assert.Equal(t, "b", combineSpecs("", "b"))
	assert.Equal(t, "", combineSpecs("", ""))
	require.NotPanics(t, func() { combineSpecs(" ", " ") })
}
