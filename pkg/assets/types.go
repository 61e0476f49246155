package assets

import (
	"github.com/aretw0/lessonflow/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// LMS types.
const (
	LMSPractice     = "practice"
	LMSConversation = "conversation"
	LMSDialogue     = "dialogue"
	LMSGame         = "game"
)

// Question types.
const (
	QuestionSpeakingUnscripted = "speaking_unscripted"
	QuestionSpeakingScripted   = "speaking_scripted"
	QuestionTrueFalse          = "true_false"
	QuestionSingleChoice       = "single_choice"
	QuestionMultipleChoice     = "multiple_choice"
	QuestionMatching           = "matching"
)

// Method values offered to collect-user-data and system-action blocks.
const (
	MethodVoice                   = "voice"
	MethodChooseAnswer            = "choose-answer"
	MethodHighlightElements       = "highlight-elements"
	MethodShowPronunciationResult = "show-pronunciation-result"
	MethodShowCorrectAnswer       = "show-correct-answer"
)

// Synthetic targets resolved at runtime, not here.
const (
	TargetUserAnswerElements = "user-answer-elements"
	TargetUserAnswer         = "user-answer"
)

// Target kinds.
const (
	KindUserAnswer = "user-answer"
	KindMain       = "main"
	KindRelevant   = "relevant"
)

// Reserved condition expressions.
const (
	ExprOther    = "OTHER"
	ExprNoAnswer = "NO_ANSWER"
)

// ImageObject is an interactive region of an image asset.
type ImageObject struct {
	ID     string `mapstructure:"id" json:"id"`
	Label  string `mapstructure:"label" json:"label,omitempty"`
	Type   string `mapstructure:"type" json:"type,omitempty"`
	IsMain bool   `mapstructure:"isMain" json:"isMain"`
}

// ImageText is a text element of an image asset.
type ImageText struct {
	ID      string `mapstructure:"id" json:"id"`
	Content string `mapstructure:"content" json:"content,omitempty"`
}

// ImageAsset is the data of an asset-image block.
type ImageAsset struct {
	Title   string        `mapstructure:"title"`
	URL     string        `mapstructure:"url"`
	Objects []ImageObject `mapstructure:"objects"`
	Texts   []ImageText   `mapstructure:"texts"`
}

// HasElements reports whether the image owns objects or texts.
func (a ImageAsset) HasElements() bool {
	return len(a.Objects) > 0 || len(a.Texts) > 0
}

// LMSAsset is the data of an asset-lms block.
type LMSAsset struct {
	Title        string `mapstructure:"title"`
	LMSType      string `mapstructure:"lmsType"`
	QuestionType string `mapstructure:"questionType"`
}

// SystemActionConfig is the stored selection of a system-action block.
type SystemActionConfig struct {
	Methods []string `mapstructure:"methods"`
	Targets []string `mapstructure:"targets"`
}

// CollectUserDataConfig is the stored selection of a collect-user-data block.
type CollectUserDataConfig struct {
	Method string `mapstructure:"method"`
}

// Method is one selectable option.
type Method struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

// Target is one element a system action may act on.
type Target struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Kind  string `json:"kind"`
}

// ConditionOption is a predefined branch expression.
type ConditionOption struct {
	Label      string `json:"label"`
	Expression string `json:"expression"`
	// Cups is the score weight awarded when the branch matches.
	Cups int `json:"cups"`
}

// decode maps loosely typed block data onto a typed config. Unknown keys are
// ignored and numbers or strings are coerced where possible.
func decode(data map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(data)
}

// DecodeImage decodes an asset-image block.
func DecodeImage(b domain.Block) (ImageAsset, error) {
	var a ImageAsset
	err := decode(b.Data, &a)
	return a, err
}

// DecodeLMS decodes an asset-lms block.
func DecodeLMS(b domain.Block) (LMSAsset, error) {
	var a LMSAsset
	err := decode(b.Data, &a)
	return a, err
}

// DecodeSystemAction decodes a system-action block.
func DecodeSystemAction(b domain.Block) (SystemActionConfig, error) {
	var c SystemActionConfig
	err := decode(b.Data, &c)
	return c, err
}

// DecodeCollectUserData decodes a collect-user-data block.
func DecodeCollectUserData(b domain.Block) (CollectUserDataConfig, error) {
	var c CollectUserDataConfig
	err := decode(b.Data, &c)
	return c, err
}
