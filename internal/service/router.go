package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"hdbagent/internal/model"
	"hdbagent/internal/telemetry"
	"hdbagent/internal/utils"

	"github.com/rs/zerolog/log"
)

// fuzzyCutoff is the minimum similarity for a vocabulary match.
const fuzzyCutoff = 0.75

const routerSpec = `You are a router. Choose ONE tool or finish.
TOOLS:
- price_estimates(town:str, flat_type:str, month?:str)
- low_supply(last_n_years:int=10, flat_type?:str)
Return STRICT JSON only:
{"tool":"price_estimates","args":{"town":"ANG MO KIO","flat_type":"4 ROOM","month":"2024-05"}}
or {"tool":"low_supply","args":{"last_n_years":10,"flat_type":"4 ROOM"}}
or {"tool":"final","args":{"answer":"..."}}`

var monthRe = regexp.MustCompile(`\b(\d{4})[-/](\d{1,2})\b`)

var (
	supplyWords  = []string{"limited", "few", "scarce"}
	supplyTopics = []string{"launch", "bto", "supply"}
)

// Router turns a user utterance into a tool call. Deterministic
// vocabulary matching runs first; the text-generation backend is a
// fallback for genuinely ambiguous phrasing, with a stable default route
// as the terminal fallback.
type Router struct {
	vocab        *VocabCatalog
	gen          TextGenerator
	recorder     *telemetry.Recorder
	maxNewTokens int
}

// NewRouter creates a router over the loaded vocabulary and generation
// backend.
func NewRouter(vocab *VocabCatalog, gen TextGenerator, recorder *telemetry.Recorder, maxNewTokens int) *Router {
	return &Router{vocab: vocab, gen: gen, recorder: recorder, maxNewTokens: maxNewTokens}
}

// Route produces a routing decision. It never fails: when neither the
// deterministic pass nor the LLM yields a usable decision, the default
// price_estimates route is returned.
func (r *Router) Route(ctx context.Context, userText string) model.Route {
	if route, ok := r.routeDeterministic(userText); ok {
		r.recorder.LogRouter(true, route.Tool, userText, "")
		return route
	}
	return r.routeWithLLM(ctx, userText)
}

// routeDeterministic pattern-matches the utterance against the tool
// schemas and the town/flat-type vocabulary.
func (r *Router) routeDeterministic(userText string) (model.Route, bool) {
	month := extractMonth(userText)

	flatType, flatOK := utils.MatchVocabulary(userText, r.vocab.FlatTypes(), fuzzyCutoff)

	if isLowSupplyQuery(userText) {
		args := model.RouteArgs{LastNYears: model.DefaultLastNYears}
		if flatOK {
			args.FlatType = flatType
		}
		return model.Route{Tool: model.ToolLowSupply, Args: args}, true
	}

	town, townOK := utils.MatchVocabulary(userText, r.vocab.Towns(), fuzzyCutoff)

	if !townOK && !flatOK && month == "" {
		return model.Route{}, false
	}

	args := model.RouteArgs{Town: model.DefaultTown, FlatType: model.DefaultFlatType}
	if townOK {
		args.Town = town
	}
	if flatOK {
		args.FlatType = flatType
	}
	if month != "" {
		args.Month = month
	}
	return model.Route{Tool: model.ToolPriceEstimates, Args: args}, true
}

// routeWithLLM prompts the backend with the tool schemas and parses the
// first balanced JSON object from its output.
func (r *Router) routeWithLLM(ctx context.Context, userText string) model.Route {
	prompt := routerSpec + "\nUser: " + userText + "\nJSON:"

	out, err := r.gen.Generate(ctx, prompt, r.maxNewTokens)
	if err != nil {
		log.Warn().Err(err).Msg("router generation failed, using default route")
		r.recorder.LogRouter(false, "", "", err.Error())
		return model.DefaultRoute()
	}

	var route model.Route
	if raw := utils.FirstJSONObject(out); raw != "" {
		err = utils.ParseLLMJSON(raw, &route)
	} else {
		err = fmt.Errorf("no JSON object in output")
	}
	if err != nil || route.Tool == "" {
		log.Warn().Err(err).Str("output", out).Msg("router output unparseable, using default route")
		r.recorder.LogRouter(false, "", out, "unparseable router output")
		return model.DefaultRoute()
	}

	r.recorder.LogRouter(true, route.Tool, out, "")
	return route
}

// extractMonth finds an optional year-month token and normalizes it to
// YYYY-MM. Absence of a month is not an error.
func extractMonth(text string) string {
	for _, m := range monthRe.FindAllStringSubmatch(text, -1) {
		year := m[1]
		var mo int
		fmt.Sscanf(m[2], "%d", &mo)
		if mo >= 1 && mo <= 12 {
			return fmt.Sprintf("%s-%02d", year, mo)
		}
	}
	return ""
}

// isLowSupplyQuery reports whether the utterance carries the low-supply
// trigger phrasing.
func isLowSupplyQuery(text string) bool {
	lower := strings.ToLower(text)
	if strings.Contains(lower, "low supply") {
		return true
	}
	word := false
	for _, w := range supplyWords {
		if strings.Contains(lower, w) {
			word = true
			break
		}
	}
	if !word {
		return false
	}
	for _, t := range supplyTopics {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}
