package bot

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lombada-bot/internal/catalog"
	"lombada-bot/internal/config"
	"lombada-bot/internal/form"
	"lombada-bot/pkg/redis"
)

func TestPaperKeyboard(t *testing.T) {
	sel, msg := form.PaperSelect(catalog.Result{Catalog: testCatalog()})
	require.Nil(t, msg)

	kb := paperKeyboard(sel)
	require.Len(t, kb.InlineKeyboard, 3)
	assert.Equal(t, "Offset", kb.InlineKeyboard[0][0].Text)
	assert.Equal(t, "papel:2", *kb.InlineKeyboard[2][0].CallbackData)
}

func TestWeightKeyboardRows(t *testing.T) {
	c := catalog.New([]catalog.PaperType{{Name: "Offset", Weights: []catalog.WeightEntry{
		{Label: "56", BaseDivisor: 56},
		{Label: "63", BaseDivisor: 50},
		{Label: "75", BaseDivisor: 46},
		{Label: "90", BaseDivisor: 38},
	}}})

	kb := weightKeyboard(form.WeightSelect(c, "Offset"))
	require.Len(t, kb.InlineKeyboard, 2)
	assert.Len(t, kb.InlineKeyboard[0], weightsPerRow)
	assert.Equal(t, "90g", kb.InlineKeyboard[1][0].Text)
	assert.Equal(t, "gram:3", *kb.InlineKeyboard[1][0].CallbackData)
}

func TestBindingKeyboard(t *testing.T) {
	kb := bindingKeyboard(FormState{Sewn: true})
	require.Len(t, kb.InlineKeyboard, 4)

	assert.Equal(t, "⬜ Cartonado", kb.InlineKeyboard[0][0].Text)
	assert.Equal(t, "⬜ Fresado", kb.InlineKeyboard[1][0].Text)
	assert.Equal(t, "✅ Costurado", kb.InlineKeyboard[2][0].Text)
	assert.Equal(t, "enc:costurado", *kb.InlineKeyboard[2][0].CallbackData)
	assert.Equal(t, CallbackCalculate, *kb.InlineKeyboard[3][0].CallbackData)
}

func TestFormStateToggle(t *testing.T) {
	var s FormState
	assert.True(t, s.Toggle(BindingMilled))
	assert.True(t, s.Toggle(BindingCaseBound))
	assert.True(t, s.Toggle(BindingMilled))
	assert.False(t, s.Toggle("espiral"))

	assert.Equal(t, FormState{CaseBound: true}, s)
	assert.Equal(t, "Cartonado", s.Binding().Description())
}

func TestRateLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.New(mr.Addr(), "", 0, time.Hour)
	t.Cleanup(client.Close)
	ctx := context.Background()

	rl := NewRateLimiter(client, config.RateLimitConfig{Limit: 2, Window: time.Minute})
	for i := 0; i < 2; i++ {
		ok, err := rl.Allow(ctx, 7, actionCalculate)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := rl.Allow(ctx, 7, actionCalculate)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = rl.Allow(ctx, 8, actionCalculate)
	require.NoError(t, err)
	assert.True(t, ok, "limits are per chat")

	assert.Equal(t, time.Minute, mr.TTL("ratelimit:calculate:7"))
}

func TestRateLimiterDisabled(t *testing.T) {
	var nilLimiter *RateLimiter
	ok, err := nilLimiter.Allow(context.Background(), 1, actionCalculate)
	require.NoError(t, err)
	assert.True(t, ok)

	zero := NewRateLimiter(nil, config.RateLimitConfig{})
	ok, err = zero.Allow(context.Background(), 1, actionCalculate)
	require.NoError(t, err)
	assert.True(t, ok)
}
