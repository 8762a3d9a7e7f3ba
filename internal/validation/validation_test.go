package validation

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnums(t *testing.T) {
	assert.NoError(t, GoalStatus("paused"))
	assert.Error(t, GoalStatus("done"))
	assert.NoError(t, Priority("high"))
	assert.Error(t, Priority("urgent"))
	assert.NoError(t, Frequency("custom"))
	assert.Error(t, Frequency("monthly"))
}

func TestTargetValue(t *testing.T) {
	assert.NoError(t, TargetValue(0.5))
	for _, v := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		err := TargetValue(v)
		require.Error(t, err, "%v", v)
		verr, ok := As(err)
		require.True(t, ok)
		assert.Equal(t, "target_value", verr.Field)
	}
}

func TestTitle(t *testing.T) {
	assert.NoError(t, ValidateTitle("Read more"))
	assert.Error(t, ValidateTitle("   "))
	assert.Error(t, ValidateTitle(strings.Repeat("a", 201)))
	assert.NoError(t, ValidateTitle(strings.Repeat("č", 200)))
}

func TestColorDayTargetDays(t *testing.T) {
	assert.NoError(t, Color("#8B5CF6"))
	assert.Error(t, Color("8B5CF6"))
	assert.Error(t, Color("#8B5CF"))

	assert.NoError(t, Day("date", "2026-02-28"))
	assert.Error(t, Day("date", "2026-02-30"))

	assert.NoError(t, TargetDays([]int{1, 7}))
	assert.Error(t, TargetDays(nil))
	assert.Error(t, TargetDays([]int{0}))
}

func TestAsUnwrapsWrapped(t *testing.T) {
	err := fmt.Errorf("create goal: %w", Field("title", "title is required"))
	verr, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, "title is required", verr.Message)

	_, ok = As(errors.New("plain"))
	assert.False(t, ok)
}

func TestPassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("correct horse battery"))
	assert.Error(t, ValidatePassword("short"))
	assert.Error(t, ValidatePassword("mypassword1234"))
}
