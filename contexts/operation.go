package contexts

// Operation kinds understood by context adapters. ContextSwitch never
// arrives at an adapter; it is the kind recorded for session context
// changes in the change log.
const (
	OpModifyProperty    = "modify_property"
	OpClearProperty     = "clear_property"
	OpIncrementProperty = "increment_property"
	OpContextSwitch     = "context_switch"
)

// FacetSentinel is the facet name recorded for context-switch change
// records, which touch no real facet.
const FacetSentinel = "__context__"

// Operation is the generic envelope a caller hands to a context
// adapter. What it means — and which facets it may touch — depends on
// the active context.
type Operation struct {
	Kind     string         `json:"kind"`
	Facet    string         `json:"facet"`
	Payload  any            `json:"payload,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Mutation is an adapter's validated plan for one facet write: the
// true prior value and the value to commit. The engine appends the
// change record durably before the facet write becomes visible.
type Mutation struct {
	Facet    string
	OldValue any
	NewValue any
	Kind     string
	Metadata map[string]any
}
