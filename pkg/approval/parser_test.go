package approval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablescout/tablescout/pkg/domain"
)

func TestParseFullApproval(t *testing.T) {
	for _, input := range []string{"yes", "Y", "  APPROVE ", "looks good", "add all", "add them", "ok"} {
		t.Run(input, func(t *testing.T) {
			d, err := Parse(input, 3)
			require.NoError(t, err)
			assert.Equal(t, domain.DecisionFull, d.Kind)
		})
	}
}

func TestParseRejection(t *testing.T) {
	for _, input := range []string{"no", "N", "cancel", "skip", "don't add", "NOPE"} {
		t.Run(input, func(t *testing.T) {
			d, err := Parse(input, 3)
			require.NoError(t, err)
			assert.Equal(t, domain.DecisionReject, d.Kind)
		})
	}
}

func TestParsePartialApproval(t *testing.T) {
	d, err := Parse("Add 1, 3", 5)
	require.NoError(t, err)
	assert.Equal(t, domain.DecisionPartial, d.Kind)
	assert.Equal(t, []int{1, 3}, d.Indices)
}

func TestParsePartialApprovalWordyForm(t *testing.T) {
	d, err := Parse("please add restaurants 2 and 4", 5)
	require.NoError(t, err)
	assert.Equal(t, domain.DecisionPartial, d.Kind)
	assert.Equal(t, []int{2, 4}, d.Indices)
}

func TestParsePartialApprovalDeduplicates(t *testing.T) {
	d, err := Parse("add 2, 2, 3", 5)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, d.Indices)
}

// TestParsePartialOutOfRange: an index past the proposal is a parse error,
// never a silent no-op.
func TestParsePartialOutOfRange(t *testing.T) {
	_, err := Parse("add 1 and 7", 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIndexOutOfRange)
}

func TestParsePartialZeroIndex(t *testing.T) {
	_, err := Parse("add 0", 5)
	assert.ErrorIs(t, err, domain.ErrIndexOutOfRange)
}

func TestParseDetailRequest(t *testing.T) {
	d, err := Parse("Tell me more about #2", 5)
	require.NoError(t, err)
	assert.Equal(t, domain.DecisionDetail, d.Kind)
	assert.Equal(t, 2, d.Index)
}

func TestParseDetailBareIndex(t *testing.T) {
	d, err := Parse("2", 5)
	require.NoError(t, err)
	assert.Equal(t, domain.DecisionDetail, d.Kind)
	assert.Equal(t, 2, d.Index)
}

func TestParseDetailOutOfRange(t *testing.T) {
	_, err := Parse("more about 9", 3)
	assert.ErrorIs(t, err, domain.ErrIndexOutOfRange)
}

func TestParseUnparseable(t *testing.T) {
	for _, input := range []string{"asdfasdf", "maybe", "add", "more please", ""} {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input, 3)
			assert.ErrorIs(t, err, domain.ErrApprovalParse)
		})
	}
}

func TestParseContinuation(t *testing.T) {
	retry, err := ParseContinuation("try again")
	require.NoError(t, err)
	assert.True(t, retry)

	retry, err = ParseContinuation("  CANCEL ")
	require.NoError(t, err)
	assert.False(t, retry)

	_, err = ParseContinuation("what happened?")
	assert.ErrorIs(t, err, domain.ErrApprovalParse)
}
