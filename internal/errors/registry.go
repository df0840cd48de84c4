package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Builder and renderer errors (H001-H009)
	// ============================================

	"H001": {
		Category: CategoryArgument,
		Message:  "Unsupported parameter of type %s",
		Detail:   "Element arguments must be content (strings, nodes, deferred functions, times) or attributes (Attr, Attrs, Classes, map[string]any).",
	},
	"H002": {
		Category: CategoryRender,
		Message:  "Cannot render value of type %s",
		Detail:   "Only strings, numbers, times, deferred functions, nodes and slices can be rendered. Maps and structs must be reached through a path or converted by a function first.",
	},

	// ============================================
	// Template document errors (H010-H019)
	// ============================================

	"H010": {
		Category: CategoryTemplate,
		Message:  "Invalid template document",
		Detail:   "The template could not be decoded. Template documents are YAML or JSON.",
	},
	"H011": {
		Category: CategoryTemplate,
		Message:  "Unknown template node %q",
		Detail:   "Every mapping in a template must be exactly one node form.",
	},
	"H012": {
		Category: CategoryTemplate,
		Message:  "Invalid value for %q",
		Detail:   "The value has the wrong shape for this node form.",
	},

	// ============================================
	// Configuration errors (H020-H029)
	// ============================================

	"H020": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "htmlfn.json could not be parsed or contains invalid values.",
	},
	"H021": {
		Category: CategoryConfig,
		Message:  "Configuration not found",
		Detail:   "No htmlfn.json was found in the project directory.",
	},

	// ============================================
	// Publish errors (H030-H039)
	// ============================================

	"H030": {
		Category: CategoryPublish,
		Message:  "Publish failed for %q",
		Detail:   "The rendered page could not be uploaded to object storage.",
	},
	"H031": {
		Category: CategoryPublish,
		Message:  "Access denied to bucket %q",
		Detail:   "The credentials in use cannot write to the configured bucket.",
	},

	// ============================================
	// Lookup errors (H040-H049)
	// ============================================

	"H040": {
		Category: CategoryTemplate,
		Message:  "Template %q not found",
		Detail:   "No template with this name was loaded from the templates directory.",
	},

	// ============================================
	// CLI errors (H050-H059)
	// ============================================

	"H050": {
		Category: CategoryCLI,
		Message:  "Invalid context file",
		Detail:   "The render context must be a YAML or JSON document.",
	},
}

// Lookup returns the template for a code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
