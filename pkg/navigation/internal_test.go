package navigation

import (
	"errors"
	"math"
	"testing"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/ports"
	"github.com/stretchr/testify/assert"
)

func TestClassifyAnswer(t *testing.T) {
	tests := []struct {
		result  string
		err     error
		want    string
		wantErr error
	}{
		{result: "yes", want: domain.EventYes},
		{result: " Agree\n", want: domain.EventYes},
		{result: "result_yes", want: domain.EventYes},
		{result: "no", want: domain.EventNo},
		{result: "disagree", want: domain.EventNo},
		{result: "failure", want: domain.EventNo},
		{result: "timeout", want: domain.EventTimeout},
		{err: ports.ErrInteractionTimeout, want: domain.EventTimeout},
		{result: "perhaps", want: domain.EventNo, wantErr: domain.ErrUnrecognizedInteractionResult},
		{result: "", want: domain.EventNo, wantErr: domain.ErrUnrecognizedInteractionResult},
		{err: errors.New("tablet offline"), want: domain.EventNo, wantErr: domain.ErrUnrecognizedInteractionResult},
	}

	for _, tt := range tests {
		got, err := classifyAnswer(tt.result, tt.err)
		assert.Equal(t, tt.want, got, "result %q", tt.result)
		if tt.wantErr != nil {
			assert.ErrorIs(t, err, tt.wantErr)
		} else {
			assert.NoError(t, err)
		}
	}
}

func TestNormalizeAngle(t *testing.T) {
	assert.InDelta(t, 0, normalizeAngle(2*math.Pi), 1e-9)
	assert.InDelta(t, -math.Pi/2, normalizeAngle(3*math.Pi/2), 1e-9)
	assert.InDelta(t, math.Pi/2, normalizeAngle(-3*math.Pi/2), 1e-9)
	assert.InDelta(t, math.Pi, normalizeAngle(-math.Pi), 1e-9)
}

func TestPosture_Clamp(t *testing.T) {
	p := Posture{
		"LShoulderRoll": 1.0,
		"LElbowRoll":    0.5,
		"Tail":          1.0,
	}
	assert.Equal(t, Posture{"LShoulderRoll": 1.0}, p.Clamp())
	assert.Equal(t, RightArmRaised, ArmRaised(domain.Right))
	assert.Equal(t, LeftArmRaised, ArmRaised(domain.Left))
	assert.Len(t, DefaultPosture.Clamp(), len(DefaultPosture))
}
