package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProspectValidate(t *testing.T) {
	assert.NoError(t, Prospect{ID: "1"}.Validate())
	assert.NoError(t, Prospect{Email: "a@x.com"}.Validate())

	err := Prospect{FirstName: "Ann", Email: "   "}.Validate()
	require.Error(t, err)
	var mre *MalformedRecordError
	require.True(t, errors.As(err, &mre))
	assert.Nil(t, mre.RecordID)
	assert.Equal(t, "prospect", mre.Kind)
	assert.Contains(t, err.Error(), "id=<nil>")
}

func TestEmailSendValidate(t *testing.T) {
	assert.NoError(t, EmailSend{ID: "e1"}.Validate())
	assert.Error(t, EmailSend{Name: "no id"}.Validate())
}

func TestIdentityValidation(t *testing.T) {
	assert.NoError(t, Form{ID: "f"}.Validate())
	assert.NoError(t, LandingPage{ID: "l"}.Validate())
	assert.NoError(t, Campaign{ID: "c"}.Validate())

	for _, err := range []error{
		Form{Name: "x"}.Validate(),
		LandingPage{ID: " "}.Validate(),
		Campaign{Name: "x"}.Validate(),
	} {
		var mre *MalformedRecordError
		require.True(t, errors.As(err, &mre))
		assert.Nil(t, mre.RecordID)
	}
}

func TestParseProgramStatus(t *testing.T) {
	cases := map[string]ProgramStatus{
		"Running":  ProgramRunning,
		" paused ": ProgramPaused,
		"ACTIVE":   ProgramRunning,
		"deleted":  ProgramUnknown,
		"":         ProgramUnknown,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseProgramStatus(in), in)
	}
}
