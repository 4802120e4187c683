package narrative

// #region imports
import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"github.com/threadweaver/threadweaver/go-engine/internal/catalog"
	"github.com/threadweaver/threadweaver/go-engine/internal/metrics"
)

// #endregion

// #region prompt

const businessStatePrompt = `You write the in-game narration for a campus dining
sustainability simulator. Given the decision just taken and the resulting
metrics (all 0-100; waste/emissions/cost lower is better, efficiency/trust
higher is better), write 2-4 sentences describing the current state of the
operation. Stay concrete and grounded in the numbers; no bullet points.`

// businessStateOut is the structured-output contract for the model.
type businessStateOut struct {
	Narrative string `json:"narrative" jsonschema:"required"`
}

// #endregion prompt

// #region openai-generator

// OpenAIGenerator asks a model for the business-state narrative and
// falls back to template text on any failure or timeout. Cosmetic by
// design: callers never see an error from it.
type OpenAIGenerator struct {
	client   *openai.Client
	model    string
	timeout  time.Duration
	schema   map[string]interface{}
	fallback *TemplateGenerator
}

// NewOpenAIGenerator builds a generator for the given model. apiKey
// must be non-empty; callers gate on configuration before constructing.
func NewOpenAIGenerator(apiKey, model string, timeout time.Duration) *OpenAIGenerator {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIGenerator{
		client:   &client,
		model:    model,
		timeout:  timeout,
		schema:   buildSchema(),
		fallback: NewTemplateGenerator(),
	}
}

// BusinessState returns model-written narration, or template text when
// the call fails for any reason.
func (g *OpenAIGenerator) BusinessState(ctx context.Context, card catalog.Card, opt catalog.Option, after metrics.State) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.generate(ctx, card, opt, after)
	if err != nil {
		log.Printf("[NARRATIVE] generation failed, using template: %v", err)
		return g.fallback.BusinessState(ctx, card, opt, after)
	}
	return text, nil
}

func (g *OpenAIGenerator) generate(ctx context.Context, card catalog.Card, opt catalog.Option, after metrics.State) (string, error) {
	input := fmt.Sprintf(
		"Decision: %s\nChosen option: %s — %s\nResulting metrics: waste=%.0f emissions=%.0f cost=%.0f efficiency=%.0f communityTrust=%.0f sustainabilityScore=%.1f",
		card.Title, opt.Label, opt.Description,
		after.Waste, after.Emissions, after.Cost, after.Efficiency, after.CommunityTrust, after.SustainabilityScore,
	)

	params := responses.ResponseNewParams{
		Model:           g.model,
		MaxOutputTokens: openai.Int(400),
		Instructions:    openai.String(businessStatePrompt),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(input, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Name:   "BusinessState",
					Schema: g.schema,
					Strict: openai.Bool(true),
					Type:   "json_schema",
				},
			},
		},
	}

	resp, err := g.client.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("narrative rpc: %w", err)
	}

	var out businessStateOut
	if err := json.Unmarshal([]byte(resp.OutputText()), &out); err != nil {
		return "", fmt.Errorf("unmarshal narrative: %w", err)
	}
	if out.Narrative == "" {
		return "", fmt.Errorf("empty narrative from model")
	}
	return out.Narrative, nil
}

// #endregion openai-generator

// #region schema

func buildSchema() map[string]interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	schema := reflector.Reflect(businessStateOut{})
	b, err := schema.MarshalJSON()
	if err != nil {
		panic(err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		panic(err)
	}
	return m
}

// #endregion schema
