package assets

var (
	otherOption    = ConditionOption{Label: "Other", Expression: ExprOther, Cups: 0}
	noAnswerOption = ConditionOption{Label: "No answer", Expression: ExprNoAnswer, Cups: 0}
)

// objectOverlapRubric grades unscripted speech by how many image objects the
// answer mentions.
var objectOverlapRubric = []ConditionOption{
	{Label: "Mentions every object", Expression: "answer.objects == all", Cups: 3},
	{Label: "Mentions the main object and a relevant one", Expression: "answer.objects.main && answer.objects.relevant > 0", Cups: 3},
	{Label: "Mentions the main object only", Expression: "answer.objects.main && answer.objects.relevant == 0", Cups: 2},
	{Label: "Mentions relevant objects only", Expression: "!answer.objects.main && answer.objects.relevant > 0", Cups: 1},
	otherOption,
	noAnswerOption,
}

// aiEvaluationRubric grades unscripted speech without image context.
var aiEvaluationRubric = []ConditionOption{
	{Label: "Good answer", Expression: "ai.score >= 0.8", Cups: 3},
	{Label: "Acceptable answer", Expression: "ai.score >= 0.5 && ai.score < 0.8", Cups: 2},
	{Label: "Weak answer", Expression: "ai.score < 0.5", Cups: 1},
	noAnswerOption,
}

var pronunciationRubric = []ConditionOption{
	{Label: "Excellent pronunciation", Expression: "pronunciation.score >= 90", Cups: 3},
	{Label: "Good pronunciation", Expression: "pronunciation.score >= 70 && pronunciation.score < 90", Cups: 2},
	{Label: "Needs practice", Expression: "pronunciation.score < 70", Cups: 1},
	noAnswerOption,
}

var choiceRubric = []ConditionOption{
	{Label: "Correct answer", Expression: "answer.correct", Cups: 3},
	{Label: "Incorrect answer", Expression: "!answer.correct", Cups: 0},
	noAnswerOption,
}

var conversationRubric = []ConditionOption{
	{Label: "Conversation completed", Expression: "conversation.completed", Cups: 3},
	{Label: "Conversation abandoned", Expression: "!conversation.completed", Cups: 0},
	otherOption,
	noAnswerOption,
}

var gameRubric = []ConditionOption{
	{Label: "Game won", Expression: "game.won", Cups: 3},
	{Label: "Game lost", Expression: "!game.won", Cups: 0},
	noAnswerOption,
}

// GetConditionBranch returns the predefined branch expressions for the LMS
// configuration. Unscripted speech uses the object overlap rubric when the
// Setup image has objects, and the AI rubric otherwise.
func GetConditionBranch(lmsType, questionType string, objects []ImageObject) []ConditionOption {
	var options []ConditionOption
	switch lmsType {
	case LMSPractice:
		switch questionType {
		case QuestionSpeakingUnscripted:
			if len(objects) > 0 {
				options = objectOverlapRubric
			} else {
				options = aiEvaluationRubric
			}
		case QuestionSpeakingScripted:
			options = pronunciationRubric
		case QuestionTrueFalse, QuestionSingleChoice, QuestionMultipleChoice:
			options = choiceRubric
		}
	case LMSConversation, LMSDialogue:
		options = conversationRubric
	case LMSGame:
		options = gameRubric
	}
	return append([]ConditionOption{}, options...)
}

// IsTemplateExpression reports whether expr belongs to any predefined rubric.
// Free-form expressions written by the author return false.
func IsTemplateExpression(expr string) bool {
	for _, rubric := range [][]ConditionOption{
		objectOverlapRubric, aiEvaluationRubric, pronunciationRubric,
		choiceRubric, conversationRubric, gameRubric,
	} {
		for _, opt := range rubric {
			if opt.Expression == expr {
				return true
			}
		}
	}
	return false
}
