package genai

// FunctionDeclaration names a tool, optionally describes it, and carries
// Schema values for its parameters and response.
type FunctionDeclaration struct {
	Name        string
	Description string
	Parameters  *Schema
	Response    *Schema
}

// RetrievalConfig configures the retrieval-grounding capability.
type RetrievalConfig struct {
	DataStoreIDs []string
}

// ComputerUseConfig configures the computer-use capability.
type ComputerUseConfig struct {
	Environment string
}

// GoogleSearchConfig configures the Google Search grounding capability.
type GoogleSearchConfig struct {
	ExcludeDomains []string
}

// MapsConfig configures the Maps grounding capability.
type MapsConfig struct {
	EnableWidget bool
}

// FileSearchConfig configures the file-search retrieval capability.
type FileSearchConfig struct {
	FileSearchStoreNames []string
}

// Tool is a tagged union: at most one capability sub-field is
// populated per value, enforced by the constructor functions below rather
// than at the type level (Go has no sum types).
type Tool struct {
	FunctionDeclarations []FunctionDeclaration
	Retrieval            *RetrievalConfig
	CodeExecution        bool
	URLContext           bool
	ComputerUse          *ComputerUseConfig
	GoogleSearch         *GoogleSearchConfig
	Maps                 *MapsConfig
	FileSearch           *FileSearchConfig
}

// populatedCount returns how many capability sub-fields are set, used to
// enforce the "at most one" invariant.
func (t Tool) populatedCount() int {
	n := 0
	if len(t.FunctionDeclarations) > 0 {
		n++
	}
	if t.Retrieval != nil {
		n++
	}
	if t.CodeExecution {
		n++
	}
	if t.URLContext {
		n++
	}
	if t.ComputerUse != nil {
		n++
	}
	if t.GoogleSearch != nil {
		n++
	}
	if t.Maps != nil {
		n++
	}
	if t.FileSearch != nil {
		n++
	}
	return n
}

// Validate enforces the Tool invariant: at most one capability populated.
func (t Tool) Validate() error {
	if t.populatedCount() > 1 {
		return NewInvalidConfigError("a Tool value may populate at most one capability")
	}
	for _, fd := range t.FunctionDeclarations {
		if err := fd.Parameters.Validate(); err != nil {
			return err
		}
		if err := fd.Response.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func NewFunctionDeclarationsTool(decls ...FunctionDeclaration) Tool {
	return Tool{FunctionDeclarations: decls}
}

func NewCodeExecutionTool() Tool {
	return Tool{CodeExecution: true}
}

func NewURLContextTool() Tool {
	return Tool{URLContext: true}
}

func NewRetrievalTool(cfg RetrievalConfig) Tool {
	return Tool{Retrieval: &cfg}
}

func NewGoogleSearchTool(cfg GoogleSearchConfig) Tool {
	return Tool{GoogleSearch: &cfg}
}

func NewFileSearchTool(cfg FileSearchConfig) Tool {
	return Tool{FileSearch: &cfg}
}

// ToolChoiceMode mirrors the function-calling-config "mode".
type ToolChoiceMode string

const (
	ToolChoiceAuto     ToolChoiceMode = "auto"
	ToolChoiceNone     ToolChoiceMode = "none"
	ToolChoiceRequired ToolChoiceMode = "required"
	ToolChoiceSpecific ToolChoiceMode = "specific"
)

type ToolChoice struct {
	Mode            ToolChoiceMode
	AllowedFunction []string // populated when Mode == ToolChoiceSpecific
}
