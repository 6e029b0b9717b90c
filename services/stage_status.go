package services

import (
	"editorial-workflow-api/models"
)

// The stage/status table is the single source of truth for which pairs are
// jointly consistent and what each editorial decision does to a submission.
// Other services consult it instead of hand-coding transitions.

var validStageStatuses = map[string]map[string]bool{
	models.StageSubmission: {
		models.StatusQueued:   true,
		models.StatusDeclined: true,
	},
	models.StageExternalReview: {
		models.StatusQueued:   true,
		models.StatusInReview: true,
		models.StatusDeclined: true,
	},
	models.StageCopyediting: {
		models.StatusAccepted: true,
		models.StatusDeclined: true,
	},
	models.StageProduction: {
		models.StatusAccepted:  true,
		models.StatusPublished: true,
	},
}

// ValidStagePair reports whether a stage and status may coexist.
func ValidStagePair(stage, status string) bool {
	statuses, ok := validStageStatuses[stage]
	return ok && statuses[status]
}

// decisionTarget describes the effect of one decision taken at one stage.
// Empty Stage or Status means "unchanged".
type decisionTarget struct {
	Stage  string
	Status string
}

var decisionTable = map[string]map[string]decisionTarget{
	models.StageSubmission: {
		models.DecisionSendToReview: {Stage: models.StageExternalReview, Status: models.StatusInReview},
		models.DecisionDecline:      {Status: models.StatusDeclined},
	},
	models.StageExternalReview: {
		models.DecisionAccept:           {Stage: models.StageCopyediting, Status: models.StatusAccepted},
		models.DecisionPendingRevisions: {},
		models.DecisionResubmit:         {},
		models.DecisionDecline:          {Status: models.StatusDeclined},
	},
	models.StageCopyediting: {
		models.DecisionSendToProduction: {Stage: models.StageProduction},
	},
}

// DecisionsForStage lists the decisions legal at a stage.
func DecisionsForStage(stage string) []string {
	targets, ok := decisionTable[stage]
	if !ok {
		return nil
	}
	decisions := make([]string, 0, len(targets))
	for decision := range targets {
		decisions = append(decisions, decision)
	}
	return decisions
}

// DecisionTarget resolves the (stage, status) effect of a decision taken at
// the given stage. Empty return values mean the attribute is unchanged.
// Returns an invalid-state error when the decision is not legal at the stage.
func DecisionTarget(stage, decision string) (newStage, newStatus string, err error) {
	targets, ok := decisionTable[stage]
	if !ok {
		return "", "", Errf(KindInvalidState, "no editorial decisions are accepted at stage %q", stage)
	}
	target, ok := targets[decision]
	if !ok {
		return "", "", Errf(KindInvalidState, "decision %q is not legal at stage %q", decision, stage)
	}
	return target.Stage, target.Status, nil
}
