package publish_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/credentialengine/obpublisher/pkg/ctdl"
	"github.com/credentialengine/obpublisher/pkg/publish"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to publish.State
		want     bool
	}{
		{publish.StatePending, publish.StatePendingNew, true},
		{publish.StatePending, publish.StatePendingUpdate, true},
		{publish.StatePending, publish.StateSaveInProgress, false},
		{publish.StatePendingNew, publish.StateSaveInProgress, true},
		{publish.StatePendingNew, publish.StateSaveSuccess, false},
		{publish.StatePendingUpdate, publish.StateSaveInProgress, true},
		{publish.StatePendingUpdate, publish.StateSaveError, true},
		{publish.StateSaveInProgress, publish.StateSaveSuccess, true},
		{publish.StateSaveInProgress, publish.StateSaveError, true},
		{publish.StateSaveInProgress, publish.StateSaveInProgress, false},
		{publish.StateSaveError, publish.StateSaveInProgress, true},
		{publish.StateSaveSuccess, publish.StateSaveInProgress, false},
		{publish.StateSaveSuccess, publish.StatePendingUpdate, false},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+" to "+tt.to.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, publish.CanTransition(tt.from, tt.to))
		})
	}
}

func TestStateLabels(t *testing.T) {
	assert.Equal(t, "Pending New", publish.StatePendingNew.String())
	assert.Equal(t, "Save in Progress", publish.StateSaveInProgress.String())
	assert.Equal(t, "Error", publish.StateSaveError.String())

	assert.True(t, publish.StateSaveError.Saveable())
	assert.False(t, publish.StateSaveError.Queued())
	assert.True(t, publish.StatePendingUpdate.Queued())
	assert.False(t, publish.StateSaveSuccess.Saveable())
}

func TestStatusCloneIsDeep(t *testing.T) {
	remote := ctdl.Credential{Name: "Remote", Keyword: []string{"a"}}
	s := publish.Status{Messages: []string{"one"}, RemoteData: &remote}

	c := s.Clone()
	c.Messages[0] = "changed"
	c.RemoteData.Keyword[0] = "changed"

	assert.Equal(t, "one", s.Messages[0])
	assert.Equal(t, "a", remote.Keyword[0])
}
