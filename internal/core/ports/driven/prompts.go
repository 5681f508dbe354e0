package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Unknown names return an error.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptMedicalAnswer answers clinical questions from transcription context.
	// The template expects %s (context) then %s (question).
	PromptMedicalAnswer = "medical_answer"

	// PromptPolicyAnswer answers questions from company policy context.
	// The template expects %s (context) then %s (question).
	PromptPolicyAnswer = "policy_answer"

	// PromptComplianceCheck asks for a JSON verdict on one rule.
	// The template expects %s (category), %s (rule) then %s (context).
	PromptComplianceCheck = "compliance_check"
)

// PromptArgs returns how many %s placeholders the named prompt takes.
func PromptArgs(name string) (int, bool) {
	switch name {
	case PromptMedicalAnswer, PromptPolicyAnswer:
		return 2, true
	case PromptComplianceCheck:
		return 3, true
	default:
		return 0, false
	}
}
