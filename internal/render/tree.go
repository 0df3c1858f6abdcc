// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"github.com/jeranaias/medchat-tui/internal/model"
)

// Kind selects which body the chat pane shows. Exactly one applies.
type Kind int

const (
	// KindEmptyPrompt is shown when no conversation is selected.
	KindEmptyPrompt Kind = iota
	// KindSpinner is shown while messages are loading.
	KindSpinner
	// KindTemplates is shown for a conversation without messages.
	KindTemplates
	// KindBubbles lists the messages.
	KindBubbles
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindSpinner:
		return "spinner"
	case KindTemplates:
		return "templates"
	case KindBubbles:
		return "bubbles"
	default:
		return "empty"
	}
}

// Tree is the projected chat pane.
type Tree struct {
	Kind Kind

	// Title of the current conversation, empty when none.
	Title string

	// Heading and Text are the placeholder copy of the empty and
	// templates views.
	Heading string
	Text    string

	Templates []Template
	Bubbles   []Bubble

	// LoadingPlaceholder is the pending-reply bubble shown while sending.
	LoadingPlaceholder bool

	// TemplatesVisible mirrors whether the quick templates row is offered:
	// a conversation is selected and has no cached messages.
	TemplatesVisible bool

	// ScrollToEnd asks the mount layer to scroll to the newest message.
	ScrollToEnd bool
}

// Span is a run of text with uniform style.
type Span struct {
	Text string
	Bold bool
}

// Line is one visual line of parsed content.
type Line []Span

// Bubble is one message.
type Bubble struct {
	MessageID model.ID
	Role      model.Role

	// Raw is the unparsed content. User bubbles only use Raw.
	Raw string

	// Lines is the parsed content of assistant bubbles.
	Lines []Line

	Citations *CitationBlock
	Feedback  *FeedbackControls

	// Tools enables the graph and related question actions.
	Tools bool

	// Selected marks the assistant message targeted by message actions.
	Selected bool

	// Revealing is true while the reveal animation runs.
	Revealing bool
}

// CitationBlock is the reference list under an assistant answer.
type CitationBlock struct {
	Label string
	Items []CitationItem
}

// CitationItem is one rendered reference.
type CitationItem struct {
	Label  string
	Title  string
	Byline string
	Link   string
	DOI    string
	PubMed string
}

// FeedbackControls shows the current rating of an answer.
type FeedbackControls struct {
	State  model.Feedback
	Reason string
}

// Template is a quick prompt offered for an empty conversation.
type Template struct {
	Title  string
	Prompt string
}

// QuickTemplates are the prompts offered in an empty conversation, bound to
// keys 1 to 4.
var QuickTemplates = []Template{
	{Title: "최신 연구 동향", Prompt: "[질환명]에 대한 최근 5년간의 주요 연구 동향을 정리해주세요."},
	{Title: "치료 가이드라인", Prompt: "[질환명]의 최신 치료 가이드라인과 1차 치료 옵션을 알려주세요."},
	{Title: "약물 상호작용", Prompt: "[약물 A]와 [약물 B]를 병용할 때 주의해야 할 상호작용을 설명해주세요."},
	{Title: "논문 요약", Prompt: "다음 논문의 연구 설계, 주요 결과, 한계점을 요약해주세요: "},
}

// Placeholder copy.
const (
	EmptyHeading     = "대화를 선택하세요"
	EmptyText        = "왼쪽 목록에서 대화를 고르거나 ctrl+n으로 새 대화를 시작하세요."
	TemplatesHeading = "새로운 대화를 시작하세요"
	TemplatesText    = "의학 연구 관련 질문을 입력하거나 아래 템플릿을 선택해보세요."
	LoadingText      = "대화를 불러오는 중입니다..."
	PendingText      = "답변을 생성하는 중입니다..."
)
