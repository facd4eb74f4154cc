// Package gemini は生成AI（Gemini API）による栄養データ生成のクライアントを提供する。
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/hitoshi/nutrilog/internal/model"
)

// generatePath はGemini APIのコンテンツ生成エンドポイントのパス。
const generatePath = "/v1beta/models/gemini-2.5-flash:generateContent"

// systemPrompt は生成AIに栄養データの役割と厳密なJSONスキーマを指示するプロンプト。
const systemPrompt = `
You are a nutrition data generator AI.
When a user gives you any food name or food with quantity (e.g., "2 boiled eggs" or "banana 100g"), respond only in valid JSON format containing detailed nutritional information.

If no weight is mentioned, assume 100 grams as the default serving size.

Your JSON must follow this structure:

{
 "food_name": "string",
 "serving_size": "number (in grams)",
 "calories": "number (in kcal)",
 "macronutrients": {
   "protein_g": "number",
   "carbohydrates_g": "number",
   "fats_g": "number",
   "fiber_g": "number",
   "sugars_g": "number"
 },
 "micronutrients": {
   "sodium_mg": "number",
   "potassium_mg": "number",
   "calcium_mg": "number",
   "iron_mg": "number",
   "vitamin_c_mg": "number",
   "vitamin_d_mcg": "number",
   "vitamin_b12_mcg": "number"
 },
 "healthy_score": "number (1-10, based on overall nutrition quality)",
 "notes": "string (short health-related advice or description)"
}

Rules:
- Respond ONLY with the JSON (no text outside JSON).
- If you can't find exact data, estimate based on similar foods.
- Round values to 1 decimal place.
- Use realistic average nutritional values per 100g.
`

// Client はGemini APIのクライアント。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	apiKey     string
	endpoint   string // テスト用にエンドポイントを差し替え可能
}

// NewClient はClientの新しいインスタンスを生成する。
func NewClient(httpClient *http.Client, logger *slog.Logger, apiKey, endpoint string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		apiKey:     apiKey,
		endpoint:   endpoint,
	}
}

// --- Gemini APIのリクエスト/レスポンス型 ---

type generateRequest struct {
	Contents          []content        `json:"contents"`
	SystemInstruction *content         `json:"systemInstruction"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GenerateNutrition は食品の自由記述をGemini APIに送り、構造化栄養データを取得する。
// レスポンスのテキスト部を厳密なJSONとしてパースする。
// HTTP失敗・パース失敗はいずれもUpstreamLookupFailedに正規化し、リトライはしない。
func (c *Client) GenerateNutrition(ctx context.Context, food string) (*model.NutritionData, error) {
	payload := generateRequest{
		Contents: []content{
			{Parts: []part{{Text: food}}},
		},
		SystemInstruction: &content{
			Parts: []part{{Text: systemPrompt}},
		},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal gemini request: %w", err)
	}

	url := c.endpoint + generatePath + "?key=" + c.apiKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("gemini request failed",
			slog.String("error", err.Error()),
		)
		return nil, model.NewUpstreamLookupError("Failed to fetch nutrition data from Gemini API.")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, model.NewUpstreamLookupError("Failed to fetch nutrition data from Gemini API.")
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("gemini returned error status",
			slog.Int("http_status", resp.StatusCode),
			slog.String("body", string(respBody)),
		)
		return nil, model.NewUpstreamLookupError("Failed to fetch nutrition data from Gemini API.")
	}

	var genResp generateResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		c.logger.Error("failed to parse gemini response envelope",
			slog.String("error", err.Error()),
		)
		return nil, model.NewUpstreamLookupError("Failed to fetch nutrition data from Gemini API.")
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		c.logger.Error("gemini response contains no candidates")
		return nil, model.NewUpstreamLookupError("Failed to fetch nutrition data from Gemini API.")
	}

	// 生成されたテキスト部そのものが栄養データのJSONであること
	raw := genResp.Candidates[0].Content.Parts[0].Text
	var nutrition model.NutritionData
	if err := json.Unmarshal([]byte(raw), &nutrition); err != nil {
		c.logger.Error("gemini returned unparseable nutrition JSON",
			slog.String("error", err.Error()),
		)
		return nil, model.NewUpstreamLookupError("Failed to fetch nutrition data from Gemini API.")
	}

	return &nutrition, nil
}
