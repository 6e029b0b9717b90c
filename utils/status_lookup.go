package utils

import (
	"fmt"
	"strings"
)

// Legacy representations of stage, status, decision and recommendation
// values still occur in older rows and in requests from clients that predate
// the canonical vocabulary: numeric codes from the previous system and ad hoc
// strings ("submitted", "revision required", ...). Canonicalization happens
// here, at the system edge; raw legacy values never flow through the core.

var stageSynonyms = map[string][]string{
	"submission": {
		"1",
		"submission",
		"intake",
		"submitted",
	},
	"external_review": {
		"3",
		"external_review",
		"review",
		"externalreview",
		"external-review",
	},
	"copyediting": {
		"4",
		"copyediting",
		"editing",
		"copy_editing",
	},
	"production": {
		"5",
		"production",
	},
}

var statusSynonyms = map[string][]string{
	"queued": {
		"1",
		"queued",
		"submitted",
		"pending",
	},
	"in_review": {
		"2",
		"in_review",
		"under_review",
		"review",
	},
	"accepted": {
		"3",
		"accepted",
		"accept",
	},
	"declined": {
		"4",
		"declined",
		"rejected",
		"archived",
	},
	"published": {
		"5",
		"published",
	},
}

// Legacy statuses that meant "author must revise". The resubmission gate
// treats any of these as a standing revision request.
var revisionRequiredStatuses = map[string]struct{}{
	"revision required":  {},
	"revisions_required": {},
	"revision_requested": {},
	"in_revision":        {},
}

var decisionSynonyms = map[string][]string{
	"send_to_external_review": {
		"8",
		"send_to_external_review",
		"send_to_review",
		"external_review",
	},
	"accept": {
		"1",
		"accept",
		"accepted",
	},
	"pending_revisions": {
		"2",
		"pending_revisions",
		"revisions",
		"minor_revisions_required",
	},
	"resubmit": {
		"3",
		"resubmit",
		"resubmit_for_review",
	},
	"decline": {
		"4",
		"decline",
		"declined",
		"reject",
	},
	"send_to_production": {
		"7",
		"send_to_production",
		"to_production",
	},
}

var recommendationSynonyms = map[string][]string{
	"accept": {
		"1",
		"accept",
	},
	"minor_revisions": {
		"2",
		"minor_revisions",
		"pending_revisions",
		"revisions",
	},
	"major_revisions": {
		"3",
		"major_revisions",
		"resubmit_here",
	},
	"reject": {
		"4",
		"reject",
		"decline",
	},
	"see_comments": {
		"5",
		"see_comments",
		"comments",
	},
}

var (
	stageAliases          = buildAliasMap(stageSynonyms)
	statusAliases         = buildAliasMap(statusSynonyms)
	decisionAliases       = buildAliasMap(decisionSynonyms)
	recommendationAliases = buildAliasMap(recommendationSynonyms)
)

func buildAliasMap(synonyms map[string][]string) map[string]string {
	aliasMap := make(map[string]string)
	for canonical, aliases := range synonyms {
		aliasMap[normalizeToken(canonical)] = canonical
		for _, alias := range aliases {
			if key := normalizeToken(alias); key != "" {
				aliasMap[key] = canonical
			}
		}
	}
	return aliasMap
}

func normalizeToken(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func canonicalize(aliasMap map[string]string, kind, value string) (string, error) {
	key := normalizeToken(value)
	if key == "" {
		return "", fmt.Errorf("%s value is required", kind)
	}
	if canonical, ok := aliasMap[key]; ok {
		return canonical, nil
	}
	return "", fmt.Errorf("unrecognized %s value %q", kind, value)
}

// CanonicalStage maps any legacy stage representation to the canonical enum.
func CanonicalStage(value string) (string, error) {
	return canonicalize(stageAliases, "stage", value)
}

// CanonicalStatus maps any legacy status representation to the canonical enum.
func CanonicalStatus(value string) (string, error) {
	return canonicalize(statusAliases, "status", value)
}

// CanonicalDecision maps any legacy decision representation to the canonical enum.
func CanonicalDecision(value string) (string, error) {
	return canonicalize(decisionAliases, "decision", value)
}

// CanonicalRecommendation maps any legacy recommendation representation to
// the canonical enum.
func CanonicalRecommendation(value string) (string, error) {
	return canonicalize(recommendationAliases, "recommendation", value)
}

// IsLegacyRevisionStatus reports whether a raw stored status string is one of
// the legacy "revision required" markers that predate editorial decisions as
// the source of truth.
func IsLegacyRevisionStatus(value string) bool {
	_, ok := revisionRequiredStatuses[normalizeToken(value)]
	return ok
}
