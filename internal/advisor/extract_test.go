package advisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/model"
)

func TestFirstJSONObject(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"embedded in prose", `Sure! Here is the plan: {"a":1} hope it helps`, `{"a":1}`},
		{"nested braces", `{"a":{"b":2}}`, `{"a":{"b":2}}`},
		{"braces inside strings", `{"a":"{not a} brace","b":1}`, `{"a":"{not a} brace","b":1}`},
		{"escaped quote in string", `{"a":"he said \"}\"","b":2}`, `{"a":"he said \"}\"","b":2}`},
		{"only first object", `{"a":1}{"b":2}`, `{"a":1}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := firstJSONObject(tc.text)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFirstJSONObjectErrors(t *testing.T) {
	for _, text := range []string{"", "no json here", "{\"a\": 1", "}{"} {
		_, err := firstJSONObject(text)
		assert.ErrorIs(t, err, model.ErrParse, "input %q", text)
	}
}

func TestParseRecommendation(t *testing.T) {
	rec, err := parseRecommendation(`Here you go:
{"action":"rebalance","confidence":0.8,"half_width_pct":7.5,"center_skew_pct":-1,"reasoning":"drift"}`)
	require.NoError(t, err)
	assert.Equal(t, model.ActionRebalance, rec.Action)
	assert.InDelta(t, 0.8, rec.Confidence, 1e-9)
	assert.InDelta(t, 7.5, rec.HalfWidthPct, 1e-9)
	assert.InDelta(t, -1, rec.CenterSkewPct, 1e-9)
}

func TestParseRecommendationRejectsForbiddenFields(t *testing.T) {
	// The output contract forbids range geometry: the model must not return
	// ticks, sqrt prices, or amounts.
	_, err := parseRecommendation(`{"action":"rebalance","confidence":0.8,"half_width_pct":7.5,"center_skew_pct":0,"lower_tick":-76500}`)
	assert.ErrorIs(t, err, model.ErrParse)

	_, err = parseRecommendation(`{"action":"rebalance","confidence":0.8,"half_width_pct":7.5,"center_skew_pct":0,"amount0":"100"}`)
	assert.ErrorIs(t, err, model.ErrParse)
}

func TestParseRecommendationMissingFields(t *testing.T) {
	_, err := parseRecommendation(`{"action":"rebalance","confidence":0.8}`)
	assert.ErrorIs(t, err, model.ErrParse)
}

func TestParseRecommendationUnknownAction(t *testing.T) {
	_, err := parseRecommendation(`{"action":"yolo","confidence":0.8,"half_width_pct":7.5,"center_skew_pct":0}`)
	assert.ErrorIs(t, err, model.ErrParse)
}

func TestParseRecommendationClampsConfidence(t *testing.T) {
	rec, err := parseRecommendation(`{"action":"maintain","confidence":3,"half_width_pct":7.5,"center_skew_pct":0}`)
	require.NoError(t, err)
	assert.Equal(t, 1.0, rec.Confidence)
}
