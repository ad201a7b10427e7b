package advisor

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/model"
)

const systemPrompt = `You are a concentrated-liquidity range advisor. You are given pool KPIs and
constraints and respond with exactly one JSON object and nothing else. The
object may only contain the fields action, confidence, reasoning,
half_width_pct, center_skew_pct and expected_outcome. Never emit ticks,
sqrt prices, or token amounts; range geometry is decided downstream.`

// allowedResponseFields is the strict output contract for the model. Any
// other field in the response, ticks and amounts in particular, rejects it.
var allowedResponseFields = map[string]struct{}{
	"action":           {},
	"confidence":       {},
	"reasoning":        {},
	"half_width_pct":   {},
	"center_skew_pct":  {},
	"expected_outcome": {},
}

// textGenerator abstracts the model call so the parsing path is testable
// without network access.
type textGenerator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// Gemini is the model-backed strategy. Its output is advisory only: the
// half-width it proposes is validated, not trusted, by the range planner.
type Gemini struct {
	gen    textGenerator
	logger *zap.Logger
}

// NewGemini connects to the Gemini API. modelName defaults to
// gemini-2.0-flash when empty.
func NewGemini(ctx context.Context, apiKey, modelName string, logger *zap.Logger) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newGeminiWithGenerator(&genaiGenerator{client: client, model: modelName}, logger), nil
}

func newGeminiWithGenerator(gen textGenerator, logger *zap.Logger) *Gemini {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gemini{gen: gen, logger: logger}
}

// Recommend prompts the model with the KPI set and parses its single JSON
// object under the strict output contract. Any failure surfaces as an error
// for the Advisor wrapper to translate into a heuristic fallback.
func (g *Gemini) Recommend(ctx context.Context, kpis model.KPISet, current model.TickRange, profile model.RiskProfile) (model.RangeRecommendation, error) {
	prompt, err := buildPrompt(kpis, current, profile)
	if err != nil {
		return model.RangeRecommendation{}, err
	}

	text, err := g.gen.Generate(ctx, systemPrompt, prompt)
	if err != nil {
		return model.RangeRecommendation{}, fmt.Errorf("%w: gemini call: %v", model.ErrUpstreamUnavailable, err)
	}

	rec, err := parseRecommendation(text)
	if err != nil {
		return model.RangeRecommendation{}, err
	}
	rec.RiskProfile = profile
	return rec, nil
}

func buildPrompt(kpis model.KPISet, current model.TickRange, profile model.RiskProfile) (string, error) {
	kpiJSON, err := json.Marshal(kpis)
	if err != nil {
		return "", fmt.Errorf("marshal kpis: %w", err)
	}
	minWidth, maxWidth := profile.PolicyBand()
	return fmt.Sprintf(`Pool KPIs: %s
Current range ticks: [%d, %d]
Risk profile: %s (half_width_pct must stay within %.0f-%.0f)
Decide action (rebalance, maintain or withdraw), confidence in [0,1],
half_width_pct and center_skew_pct. Respond with one JSON object only.`,
		kpiJSON, current.Lower, current.Upper, profile, minWidth, maxWidth), nil
}

func parseRecommendation(text string) (model.RangeRecommendation, error) {
	raw, err := firstJSONObject(text)
	if err != nil {
		return model.RangeRecommendation{}, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return model.RangeRecommendation{}, fmt.Errorf("%w: advisor response: %v", model.ErrParse, err)
	}
	for key := range fields {
		if _, ok := allowedResponseFields[key]; !ok {
			return model.RangeRecommendation{}, fmt.Errorf("%w: advisor response contains forbidden field %q", model.ErrParse, key)
		}
	}
	for _, required := range []string{"action", "confidence", "half_width_pct", "center_skew_pct"} {
		if _, ok := fields[required]; !ok {
			return model.RangeRecommendation{}, fmt.Errorf("%w: advisor response missing field %q", model.ErrParse, required)
		}
	}

	var rec model.RangeRecommendation
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return model.RangeRecommendation{}, fmt.Errorf("%w: advisor response: %v", model.ErrParse, err)
	}

	switch rec.Action {
	case model.ActionRebalance, model.ActionMaintain, model.ActionWithdraw:
	default:
		return model.RangeRecommendation{}, fmt.Errorf("%w: advisor returned unknown action %q", model.ErrParse, rec.Action)
	}

	if rec.Confidence < 0 {
		rec.Confidence = 0
	}
	if rec.Confidence > 1 {
		rec.Confidence = 1
	}
	return rec, nil
}

// genaiGenerator is the production text generator.
type genaiGenerator struct {
	client *genai.Client
	model  string
}

func (g *genaiGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(user), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.2),
	})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
