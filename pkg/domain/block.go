package domain

// BlockType identifies the kind of content or configuration a block holds.
type BlockType string

const (
	BlockTeacherVideo    BlockType = "teacher-video"
	BlockAssetsApplied   BlockType = "assets-applied"
	BlockQuestion        BlockType = "question"
	BlockCollectUserData BlockType = "collect-user-data"
	BlockSystemAction    BlockType = "system-action"
	BlockAudio           BlockType = "audio"
	BlockAssetImage      BlockType = "asset-image"
	BlockAssetVideo      BlockType = "asset-video"
	BlockAssetLMS        BlockType = "asset-lms"
	BlockVariable        BlockType = "variable"
	BlockConditionBranch BlockType = "condition-branch"
	BlockText            BlockType = "text"
)

// IsAsset reports whether blocks of this type live in the Setup node and are
// referenced from other nodes.
func (t BlockType) IsAsset() bool {
	switch t {
	case BlockAssetImage, BlockAssetVideo, BlockAssetLMS:
		return true
	}
	return false
}

// Block is an ordered content/config unit owned by exactly one node.
type Block struct {
	ID   string         `json:"id" validate:"required"`
	Type BlockType      `json:"type" validate:"required,blocktype"`
	Data map[string]any `json:"data"`
}

// Title returns data.title, or the empty string.
func (b Block) Title() string {
	if b.Data == nil {
		return ""
	}
	title, _ := b.Data["title"].(string)
	return title
}

// Clone returns a deep copy of the block.
func (b Block) Clone() Block {
	b.Data = CloneMap(b.Data)
	return b
}

// BlockSpec describes a block to be created. ID and title are generated
// when left empty.
type BlockSpec struct {
	Type BlockType      `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}
