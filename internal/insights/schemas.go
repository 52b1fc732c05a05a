package insights

import "github.com/nileshgupta/stocklens/internal/genai"

// Response schemas, one per operation. Property names match the JSON
// tags on the model package types the replies decode into. Citations
// are absent on purpose: they come from grounding metadata, not from
// the model's own output.

var statusSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"status": {Type: genai.TypeString, Enum: []string{"OPEN", "CLOSED", "UNKNOWN"}},
		"reason": {Type: genai.TypeString, Description: "One line, e.g. the holiday name or session hours"},
	},
	Required: []string{"status", "reason"},
}

var moverSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"symbol": {Type: genai.TypeString},
		"note":   {Type: genai.TypeString},
	},
	Required: []string{"symbol", "note"},
}

var pulseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"headline": {Type: genai.TypeString},
		"summary":  {Type: genai.TypeString},
		"indices": {Type: genai.TypeArray, Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"name":          {Type: genai.TypeString},
				"close":         {Type: genai.TypeNumber},
				"changePercent": {Type: genai.TypeNumber},
			},
			Required: []string{"name", "close", "changePercent"},
		}},
		"gainers": {Type: genai.TypeArray, Items: moverSchema},
		"losers":  {Type: genai.TypeArray, Items: moverSchema},
		"sectors": {Type: genai.TypeArray, Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"name":  {Type: genai.TypeString},
				"trend": {Type: genai.TypeString, Enum: []string{"UP", "DOWN", "FLAT"}},
				"note":  {Type: genai.TypeString},
			},
			Required: []string{"name", "trend"},
		}},
	},
	Required: []string{"headline", "summary", "indices"},
}

var explainSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"symbol":  {Type: genai.TypeString},
		"summary": {Type: genai.TypeString, Description: "What the price did and over what window"},
		"drivers": {Type: genai.TypeArray, Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"title":  {Type: genai.TypeString},
				"detail": {Type: genai.TypeString},
				"impact": {Type: genai.TypeString, Enum: []string{"POSITIVE", "NEGATIVE", "MIXED"}},
			},
			Required: []string{"title", "detail", "impact"},
		}},
		"sentiment": {Type: genai.TypeString, Enum: []string{"BULLISH", "BEARISH", "NEUTRAL"}},
		"risks":     {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
	},
	Required: []string{"symbol", "summary", "drivers", "sentiment"},
}

var compareSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"firstSymbol":  {Type: genai.TypeString},
		"secondSymbol": {Type: genai.TypeString},
		"rows": {Type: genai.TypeArray, Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"metric": {Type: genai.TypeString},
				"first":  {Type: genai.TypeString},
				"second": {Type: genai.TypeString},
				"edge":   {Type: genai.TypeString, Enum: []string{"FIRST", "SECOND", "EVEN"}},
			},
			Required: []string{"metric", "first", "second", "edge"},
		}},
		"verdict": {Type: genai.TypeString},
	},
	Required: []string{"rows", "verdict"},
}

var discoverSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"symbol":    {Type: genai.TypeString},
			"name":      {Type: genai.TypeString},
			"sector":    {Type: genai.TypeString},
			"rationale": {Type: genai.TypeString},
			"risk":      {Type: genai.TypeString},
		},
		Required: []string{"symbol", "name", "sector", "rationale", "risk"},
	},
}

var rebalanceSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"actions": {Type: genai.TypeArray, Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"symbol":              {Type: genai.TypeString},
				"action":              {Type: genai.TypeString, Enum: []string{"HOLD", "ADD", "TRIM", "EXIT"}},
				"rationale":           {Type: genai.TypeString},
				"targetWeightPercent": {Type: genai.TypeNumber},
			},
			Required: []string{"symbol", "action", "rationale"},
		}},
		"notes": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
	},
	Required: []string{"actions"},
}
