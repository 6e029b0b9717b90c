package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalStage(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"submission", "submission"},
		{"1", "submission"},
		{"Submitted", "submission"},
		{"external_review", "external_review"},
		{"3", "external_review"},
		{"REVIEW", "external_review"},
		{"external-review", "external_review"},
		{"copyediting", "copyediting"},
		{"copy_editing", "copyediting"},
		{"production", "production"},
		{"  5  ", "production"},
	}
	for _, tc := range cases {
		got, err := CanonicalStage(tc.input)
		require.NoError(t, err, "input %q", tc.input)
		assert.Equal(t, tc.want, got, "input %q", tc.input)
	}
}

func TestCanonicalStageRejectsUnknown(t *testing.T) {
	_, err := CanonicalStage("galley")
	assert.Error(t, err)

	_, err = CanonicalStage("")
	assert.Error(t, err)

	_, err = CanonicalStage("99")
	assert.Error(t, err)
}

func TestCanonicalStatus(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"queued", "queued"},
		{"pending", "queued"},
		{"1", "queued"},
		{"under_review", "in_review"},
		{"accept", "accepted"},
		{"rejected", "declined"},
		{"archived", "declined"},
		{"5", "published"},
	}
	for _, tc := range cases {
		got, err := CanonicalStatus(tc.input)
		require.NoError(t, err, "input %q", tc.input)
		assert.Equal(t, tc.want, got, "input %q", tc.input)
	}
}

func TestCanonicalDecision(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"accept", "accept"},
		{"Accepted", "accept"},
		{"2", "pending_revisions"},
		{"minor_revisions_required", "pending_revisions"},
		{"resubmit_for_review", "resubmit"},
		{"reject", "decline"},
		{"8", "send_to_external_review"},
		{"send_to_review", "send_to_external_review"},
		{"to_production", "send_to_production"},
	}
	for _, tc := range cases {
		got, err := CanonicalDecision(tc.input)
		require.NoError(t, err, "input %q", tc.input)
		assert.Equal(t, tc.want, got, "input %q", tc.input)
	}
}

func TestCanonicalRecommendation(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"accept", "accept"},
		{"pending_revisions", "minor_revisions"},
		{"resubmit_here", "major_revisions"},
		{"decline", "reject"},
		{"comments", "see_comments"},
	}
	for _, tc := range cases {
		got, err := CanonicalRecommendation(tc.input)
		require.NoError(t, err, "input %q", tc.input)
		assert.Equal(t, tc.want, got, "input %q", tc.input)
	}
}

func TestIsLegacyRevisionStatus(t *testing.T) {
	assert.True(t, IsLegacyRevisionStatus("revision required"))
	assert.True(t, IsLegacyRevisionStatus("Revisions_Required"))
	assert.True(t, IsLegacyRevisionStatus("in_revision"))

	assert.False(t, IsLegacyRevisionStatus("in_review"))
	assert.False(t, IsLegacyRevisionStatus("queued"))
	assert.False(t, IsLegacyRevisionStatus(""))
}
