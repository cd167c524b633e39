package constant

const (
	ChatMessageRoleUser   = "user"
	ChatMessageRoleModel  = "model"
	ChatMessageRoleSystem = "system"

	// Opening message appended when a mode is chosen
	GeneralInformationGreeting = `Hello! You're in **General Legal Information** mode.

Ask me about laws, rights, procedures or legal terms and I'll explain how they generally work. I can't give advice on your specific situation here.`

	CaseAssessmentGreeting = `Hello! You're in **Case Plausibility Assessment** mode.

Describe what happened in your own words: who was involved, when it happened, and what outcome you are hoping for. When I have enough detail I'll prepare a pre-assessment with a plausibility score.`

	// Prepended to the outbound payload when the input already fits the active mode.
	// The visible transcript keeps the user's original text.
	ModeLockDirective = "[SYSTEM NOTE: The user's message already fits the current mode. Answer within this mode and do not offer to switch modes.]\n\n"

	GenericErrorMessage = "Sorry, something went wrong while processing your message. Please try again in a moment."

	ConversationTitleMaxLength = 60
)

var (
	GeneralInformationTypingPhrases = []string{
		"Looking up the relevant rules...",
		"Reviewing general legal principles...",
		"Putting together an explanation...",
		"Checking common legal definitions...",
	}

	CaseAssessmentTypingPhrases = []string{
		"Analyzing your situation...",
		"Identifying the legal issues...",
		"Weighing the facts you described...",
		"Preparing your case assessment...",
	}
)
