package assets

import "fmt"

var methodCatalog = map[string]Method{
	MethodVoice:                   {Value: MethodVoice, Label: "Voice", Description: "Record the learner's spoken answer"},
	MethodChooseAnswer:            {Value: MethodChooseAnswer, Label: "Choose answer", Description: "Let the learner pick an option"},
	MethodHighlightElements:       {Value: MethodHighlightElements, Label: "Highlight elements", Description: "Highlight image objects"},
	MethodShowPronunciationResult: {Value: MethodShowPronunciationResult, Label: "Show pronunciation result", Description: "Display the pronunciation score"},
	MethodShowCorrectAnswer:       {Value: MethodShowCorrectAnswer, Label: "Show correct answer", Description: "Reveal the expected answer"},
}

func methods(values ...string) []Method {
	out := make([]Method, 0, len(values))
	for _, v := range values {
		out = append(out, methodCatalog[v])
	}
	return out
}

// collectByQuestion maps practice question types to collection methods.
var collectByQuestion = map[string][]string{
	QuestionSpeakingUnscripted: {MethodVoice},
	QuestionSpeakingScripted:   {MethodVoice},
	QuestionTrueFalse:          {MethodChooseAnswer},
	QuestionSingleChoice:       {MethodChooseAnswer},
	QuestionMultipleChoice:     {MethodChooseAnswer},
}

// GetCollectUserDataMethods returns the collection methods valid for the LMS
// configuration. Unmapped combinations yield an empty list.
func GetCollectUserDataMethods(lmsType, questionType string) []Method {
	switch lmsType {
	case LMSPractice:
		return methods(collectByQuestion[questionType]...)
	case LMSConversation, LMSDialogue:
		return methods(MethodVoice)
	case LMSGame:
		return methods(MethodChooseAnswer)
	}
	return []Method{}
}

// GetSystemActionMethods returns the system actions valid for the LMS
// configuration and the elements of the Setup image. Without an LMS, objects
// still allow manual highlighting.
func GetSystemActionMethods(lmsType, questionType string, objects []ImageObject, texts []ImageText) []Method {
	hasObjects, hasTexts := len(objects) > 0, len(texts) > 0

	var values []string
	switch lmsType {
	case "":
		if hasObjects {
			values = append(values, MethodHighlightElements)
		}
	case LMSPractice:
		switch questionType {
		case QuestionSpeakingUnscripted:
			if hasObjects {
				values = append(values, MethodHighlightElements)
			}
		case QuestionSpeakingScripted:
			if hasTexts {
				values = append(values, MethodShowPronunciationResult)
			}
			if hasObjects {
				values = append(values, MethodHighlightElements)
			}
		case QuestionTrueFalse, QuestionSingleChoice, QuestionMultipleChoice:
			values = append(values, MethodShowCorrectAnswer)
		}
	case LMSConversation, LMSDialogue:
		if hasObjects {
			values = append(values, MethodHighlightElements)
		}
	}
	return methods(values...)
}

// GetSystemActionTargets returns the elements an action may target.
func GetSystemActionTargets(actionType string, objects []ImageObject, hasLMSContext bool) []Target {
	targets := []Target{}
	switch actionType {
	case MethodHighlightElements:
		if hasLMSContext {
			targets = append(targets, Target{ID: TargetUserAnswerElements, Label: "User answer elements", Kind: KindUserAnswer})
		}
		for i, obj := range objects {
			label := obj.Label
			if label == "" {
				label = fmt.Sprintf("Object %d", i+1)
			}
			kind := KindRelevant
			if obj.IsMain {
				kind = KindMain
			}
			targets = append(targets, Target{ID: obj.ID, Label: label, Kind: kind})
		}
	case MethodShowPronunciationResult:
		targets = append(targets, Target{ID: TargetUserAnswer, Label: "User answer", Kind: KindUserAnswer})
	}
	return targets
}

// CollectUserDataMethods binds GetCollectUserDataMethods to the context.
func (c FlowContext) CollectUserDataMethods() []Method {
	return GetCollectUserDataMethods(c.LMSType, c.QuestionType)
}

// SystemActionMethods binds GetSystemActionMethods to the context.
func (c FlowContext) SystemActionMethods() []Method {
	return GetSystemActionMethods(c.LMSType, c.QuestionType, c.Objects, c.Texts)
}

// SystemActionTargets binds GetSystemActionTargets to the context.
func (c FlowContext) SystemActionTargets(actionType string) []Target {
	return GetSystemActionTargets(actionType, c.Objects, c.HasLMS())
}

// ConditionBranch binds GetConditionBranch to the context.
func (c FlowContext) ConditionBranch() []ConditionOption {
	return GetConditionBranch(c.LMSType, c.QuestionType, c.Objects)
}
