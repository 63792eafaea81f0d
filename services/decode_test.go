package services

import (
	"errors"
	"testing"

	"go_procure_backend/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence(`{"a":1}`))
	assert.Equal(t, "plain text", stripCodeFence("plain text"))
}

func TestDecodeModelJSONDirect(t *testing.T) {
	var v map[string]int
	require.NoError(t, decodeModelJSON(`{"a": 1}`, &v, jsonObjectPattern))
	assert.Equal(t, 1, v["a"])
}

func TestDecodeModelJSONRecoversSpan(t *testing.T) {
	var v []string
	raw := "提取结果：[\"a\", \"b\"]，请查收"
	require.NoError(t, decodeModelJSON(raw, &v, jsonArrayPattern))
	assert.Equal(t, []string{"a", "b"}, v)
}

func TestDecodeModelJSONFailure(t *testing.T) {
	var v map[string]int
	err := decodeModelJSON("抱歉，没有可用数据", &v, jsonObjectPattern)
	require.Error(t, err)

	var decodeErr *errs.DecodeError
	assert.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, "抱歉，没有可用数据", decodeErr.Raw)
}

func TestTruncateForReason(t *testing.T) {
	assert.Equal(t, "short", truncateForReason("short", 10))
	assert.Equal(t, "长长长...", truncateForReason("长长长长长", 3), "truncation is rune-safe")
}
