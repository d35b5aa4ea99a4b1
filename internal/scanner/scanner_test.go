package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitTopLevel_NestedStructures(t *testing.T) {
	segments := SplitTopLevel("a, {b: 1, c: 2}, [1,2]")
	assert.Equal(t, []string{"a", "{b: 1, c: 2}", "[1,2]"}, segments)
}

func TestSplitTopLevel_QuotedCommas(t *testing.T) {
	segments := SplitTopLevel(`msg: "hello, world", level: info`)
	assert.Equal(t, []string{`msg: "hello, world"`, "level: info"}, segments)
}

func TestSplitTopLevel_SingleQuotes(t *testing.T) {
	segments := SplitTopLevel(`a: 'x, y', b: 2`)
	assert.Equal(t, []string{`a: 'x, y'`, "b: 2"}, segments)
}

func TestSplitTopLevel_DeepNesting(t *testing.T) {
	segments := SplitTopLevel("a: {b: [1, {c: 2}, 3]}, d: 4")
	assert.Equal(t, []string{"a: {b: [1, {c: 2}, 3]}", "d: 4"}, segments)
}

func TestSplitTopLevel_EmptyAndWhitespace(t *testing.T) {
	assert.Nil(t, SplitTopLevel(""))
	assert.Nil(t, SplitTopLevel("   "))
}

func TestSplitTopLevel_TrailingComma(t *testing.T) {
	// A trailing comma leaves an empty final segment, which is dropped.
	segments := SplitTopLevel("a: 1, b: 2,")
	assert.Equal(t, []string{"a: 1", "b: 2"}, segments)
}

func TestSplitTopLevel_InnerEmptySegmentKept(t *testing.T) {
	// Only the final segment has the non-empty requirement.
	segments := SplitTopLevel("a,,b")
	assert.Equal(t, []string{"a", "", "b"}, segments)
}

func TestSplitTopLevel_BracesInsideQuotes(t *testing.T) {
	segments := SplitTopLevel(`a: "{not, nested}", b: 2`)
	assert.Equal(t, []string{`a: "{not, nested}"`, "b: 2"}, segments)
}

func TestDepthTracker_PlainCountsQuotedBraces(t *testing.T) {
	tracker := DepthTracker{}
	tracker.StepString(`{msg: "a { brace"}`)
	// The plain scan counts the brace inside the string, so depth does
	// not return to zero. This is the documented limitation.
	assert.Equal(t, 1, tracker.Depth())
}

func TestDepthTracker_QuoteAwareSkipsQuotedBraces(t *testing.T) {
	tracker := DepthTracker{QuoteAware: true}
	tracker.StepString(`{msg: "a { brace"}`)
	assert.Equal(t, 0, tracker.Depth())
}

func TestDepthTracker_Reset(t *testing.T) {
	tracker := DepthTracker{QuoteAware: true}
	tracker.StepString(`{"open`)
	tracker.Reset()
	assert.Equal(t, 0, tracker.Depth())
	assert.False(t, tracker.InQuote())
}

func TestDepthTracker_BracketsAndBraces(t *testing.T) {
	tracker := DepthTracker{}
	tracker.StepString("{[")
	assert.Equal(t, 2, tracker.Depth())
	tracker.StepString("]}")
	assert.Equal(t, 0, tracker.Depth())
}
