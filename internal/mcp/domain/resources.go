package domain

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/louisbranch/synthesis.garden/internal/core/recipe"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// gameRules is the static rules text exposed at game://rules.
const gameRules = `Crafting game rules:
- You start with four base elements: air, earth, fire, water.
- Each turn, combine two items from your inventory with the combine tool.
- Order does not matter: combining air with fire is the same as fire with air.
- A successful combination adds the resulting elements to your inventory.
- Some combinations produce more than one element at once.
- Some elements are final: they cannot be used as an ingredient again.
- Every attempt consumes a round, including misses and repeated pairs.
- Open-ended mode: discover as many elements as you can within the round budget.
- Targeted mode: craft the target element before your rounds run out.
- End the session with end_game to get a final summary of your run.`

// RulesResource defines the MCP resource for the game rules.
func RulesResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "game_rules",
		Title:       "Game Rules",
		Description: "How the crafting game is played",
		MIMEType:    "text/plain",
		URI:         "game://rules",
	}
}

// RulesResourceHandler returns the static rules text.
func RulesResourceHandler() mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		uri := RulesResource().URI
		if req != nil && req.Params != nil && req.Params.URI != "" {
			uri = req.Params.URI
		}

		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      uri,
					MIMEType: "text/plain",
					Text:     gameRules,
				},
			},
		}, nil
	}
}

// RecipeEntry is one recipe in the recipe listing payload.
type RecipeEntry struct {
	Pair    []string `json:"pair"`
	Results []string `json:"results"`
}

// RecipesPayload represents the MCP resource payload for the recipe table.
type RecipesPayload struct {
	Recipes []RecipeEntry `json:"recipes"`
	Finals  []string      `json:"final_elements"`
}

// RecipesResource defines the MCP resource for the recipe table.
func RecipesResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "game_recipes",
		Title:       "Recipe Table",
		Description: "The full combination table and the final elements derived from it",
		MIMEType:    "application/json",
		URI:         "game://recipes",
	}
}

// RecipesResourceHandler returns the recipe table as JSON.
func RecipesResourceHandler(book *recipe.Book) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if book == nil {
			return nil, fmt.Errorf("recipe book is not configured")
		}

		uri := RecipesResource().URI
		if req != nil && req.Params != nil && req.Params.URI != "" {
			uri = req.Params.URI
		}

		payload := RecipesPayload{Recipes: make([]RecipeEntry, 0, book.Len())}
		for _, pair := range book.Pairs() {
			result, err := book.Lookup(pair.First, pair.Second)
			if err != nil {
				return nil, fmt.Errorf("lookup %q: %w", pair, err)
			}
			payload.Recipes = append(payload.Recipes, RecipeEntry{
				Pair:    []string{string(pair.First), string(pair.Second)},
				Results: elementsToStrings(result.Elements),
			})
		}
		for _, element := range book.Vocabulary() {
			if book.IsFinal(element) {
				payload.Finals = append(payload.Finals, string(element))
			}
		}

		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal recipe table: %w", err)
		}

		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      uri,
					MIMEType: "application/json",
					Text:     string(data),
				},
			},
		}, nil
	}
}
