package diaglog

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPointerText(t *testing.T) {
	tests := []struct {
		name string
		in   Pointer
		want string
	}{
		{"down", Pointer{Action: ActionDown, X: 10.5, Y: 20.0}, "down, 10.5, 20.0"},
		{"move", Pointer{Action: ActionMove, X: 11, Y: 21}, "move, 11.0, 21.0"},
		{"cancel", Pointer{Action: ActionCancel, X: 0, Y: 3.25}, "cancel, 0.0, 3.25"},
		{"up", Pointer{Action: ActionUp, X: 640, Y: 480}, "up, 640.0, 480.0"},
		{"unknown code keeps coordinates", Pointer{Action: 99, X: 1, Y: 2}, "1.0, 2.0"},
		{"negative code", Pointer{Action: -1, X: 5.5, Y: 6}, "5.5, 6.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Text())
		})
	}
}

func TestLifecycleText(t *testing.T) {
	assert.Equal(t, "created", Lifecycle("created").Text())
	assert.Equal(t, "finishing", Lifecycle("finishing").Text())
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float32
		want string
	}{
		{0, "0.0"},
		{float32(math.Copysign(0, -1)), "-0.0"},
		{1, "1.0"},
		{10.5, "10.5"},
		{-3.75, "-3.75"},
		{0.1, "0.1"},
		{0.001, "0.001"},
		{123456.7, "123456.7"},
		{1e7, "1.0E7"},
		{1.5e8, "1.5E8"},
		{1e-4, "1.0E-4"},
		{float32(math.Inf(1)), "Infinity"},
		{float32(math.Inf(-1)), "-Infinity"},
		{float32(math.NaN()), "NaN"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatFloat(tt.in), "FormatFloat(%v)", tt.in)
	}
}

func TestActionLabelRoundTrip(t *testing.T) {
	for _, a := range []Action{ActionDown, ActionMove, ActionCancel, ActionUp} {
		label, ok := a.Label()
		assert.True(t, ok)
		back, ok := ParseAction(label)
		assert.True(t, ok)
		assert.Equal(t, a, back)
	}

	_, ok := Action(42).Label()
	assert.False(t, ok)
	_, ok = ParseAction("hover")
	assert.False(t, ok)
}
