package round

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parkside/discscore/internal/config"
	"github.com/parkside/discscore/internal/model"
)

func bounds() config.Bounds { return config.Default().Bounds }

func TestValidate_ValidTriples(t *testing.T) {
	cases := []struct {
		name string
		in   Input
	}{
		{"throws only, minimum", Input{Throws: 1}},
		{"throws only, maximum", Input{Throws: 20}},
		{"with approaches", Input{Throws: 3, Approaches: model.IntPtr(2)}},
		{"with putts", Input{Throws: 3, Putts: model.IntPtr(2)}},
		{"both, sums to throws-1", Input{Throws: 4, Approaches: model.IntPtr(2), Putts: model.IntPtr(1)}},
		{"both zero", Input{Throws: 1, Approaches: model.IntPtr(0), Putts: model.IntPtr(0)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Empty(t, Validate(tc.in, bounds()))
		})
	}
}

func TestValidate_ThrowsOutOfRange(t *testing.T) {
	for _, throws := range []int{0, -5} {
		errs := Validate(Input{Throws: throws}, bounds())
		require.Len(t, errs, 1, "throws=%d", throws)
		assert.Equal(t, FieldThrows, errs[0].Field)
		assert.Equal(t, "must be at least 1", errs[0].Message)
	}
	for _, throws := range []int{21, 100} {
		errs := Validate(Input{Throws: throws}, bounds())
		require.Len(t, errs, 1, "throws=%d", throws)
		assert.Equal(t, FieldThrows, errs[0].Field)
		assert.Equal(t, "cannot exceed 20", errs[0].Message)
	}
}

func TestValidate_SubValueRange(t *testing.T) {
	errs := Validate(Input{Throws: 5, Approaches: model.IntPtr(-1)}, bounds())
	require.Len(t, errs, 1)
	assert.Equal(t, FieldApproaches, errs[0].Field)

	errs = Validate(Input{Throws: 5, Putts: model.IntPtr(20)}, bounds())
	require.Len(t, errs, 1)
	assert.Equal(t, FieldPutts, errs[0].Field)
}

func TestValidate_CollectsAllFieldErrors(t *testing.T) {
	errs := Validate(Input{Throws: 0, Approaches: model.IntPtr(-1), Putts: model.IntPtr(25)}, bounds())
	require.Len(t, errs, 3)
	assert.Len(t, errs.ByField(FieldThrows), 1)
	assert.Len(t, errs.ByField(FieldApproaches), 1)
	assert.Len(t, errs.ByField(FieldPutts), 1)
	// The consistency rule never runs while field errors exist.
	assert.Empty(t, errs.ByField(FieldConsistency))
}

func TestValidate_Consistency(t *testing.T) {
	// Individually valid values can still be inconsistent: a hole needs at
	// least one throw that is neither an approach nor a putt.
	errs := Validate(Input{Throws: 3, Approaches: model.IntPtr(2), Putts: model.IntPtr(1)}, bounds())
	require.Len(t, errs, 1)
	assert.Equal(t, FieldConsistency, errs[0].Field)

	// One more throw and the same sub-values fit.
	errs = Validate(Input{Throws: 4, Approaches: model.IntPtr(2), Putts: model.IntPtr(1)}, bounds())
	assert.Empty(t, errs)
}

func TestValidate_ConsistencyNeedsBothSubValues(t *testing.T) {
	// A lone sub-value equal to throws is suspicious but not checked; the
	// consistency rule only applies when both are present.
	errs := Validate(Input{Throws: 3, Approaches: model.IntPtr(3)}, bounds())
	assert.Empty(t, errs)
}
