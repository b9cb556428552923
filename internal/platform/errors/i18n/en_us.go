package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeSessionExists      = "SESSION_ALREADY_EXISTS"
	CodeUnknownSession     = "SESSION_NOT_FOUND"
	CodeSessionEnded       = "SESSION_ALREADY_ENDED"
	CodeInvalidMode        = "SESSION_INVALID_MODE"
	CodeInvalidMaxRounds   = "SESSION_INVALID_MAX_ROUNDS"
	CodeMissingTarget      = "SESSION_MISSING_TARGET"
	CodeItemNotInInventory = "ITEM_NOT_IN_INVENTORY"
	CodeRoundsExhausted    = "ROUNDS_EXHAUSTED"
	CodeUnknownElement     = "ELEMENT_NOT_IN_VOCABULARY"
	CodeRecipeTableInvalid = "RECIPE_TABLE_INVALID"
)

func init() {
	Register("en-US", map[Code]string{
		// Session lifecycle errors
		CodeSessionExists:    "Game session '{{.session_id}}' already exists",
		CodeUnknownSession:   "Game session '{{.session_id}}' not found",
		CodeSessionEnded:     "Game session '{{.session_id}}' has already ended",
		CodeInvalidMode:      "Game mode must be open-ended or targeted",
		CodeInvalidMaxRounds: "Max rounds must be a positive number",
		CodeMissingTarget:    "Targeted mode requires a target element",

		// Game rule errors
		CodeItemNotInInventory: "'{{.item}}' is not in your inventory{{if .inventory}}. You have: {{.inventory}}{{end}}",
		CodeRoundsExhausted:    "No rounds remaining ({{.rounds_used}}/{{.rounds_max}} used)",

		// Recipe errors
		CodeUnknownElement:     "'{{.element}}' is not a known element",
		CodeRecipeTableInvalid: "The recipe table could not be loaded",
	})
}
