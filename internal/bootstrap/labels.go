package bootstrap

import (
	"github.com/ghoo-cli/ghoo/internal/githubcli"
	"github.com/ghoo-cli/ghoo/internal/workflow"
)

const (
	backlogLabelColorConstant                    = "ededed"
	planningLabelColorConstant                   = "fbca04"
	awaitingPlanApprovalLabelColorConstant       = "f9d0c4"
	planApprovedLabelColorConstant               = "c2e0c6"
	inProgressLabelColorConstant                 = "1d76db"
	awaitingCompletionApprovalLabelColorConstant = "e99695"
	closedLabelColorConstant                     = "0e8a16"
	epicLabelColorConstant                       = "3e4b9e"
	taskLabelColorConstant                       = "0075ca"
	subtaskLabelColorConstant                    = "bfd4f2"
)

var statusLabelColors = map[workflow.State]string{
	workflow.StateBacklog:                    backlogLabelColorConstant,
	workflow.StatePlanning:                   planningLabelColorConstant,
	workflow.StateAwaitingPlanApproval:       awaitingPlanApprovalLabelColorConstant,
	workflow.StatePlanApproved:               planApprovedLabelColorConstant,
	workflow.StateInProgress:                 inProgressLabelColorConstant,
	workflow.StateAwaitingCompletionApproval: awaitingCompletionApprovalLabelColorConstant,
	workflow.StateClosed:                     closedLabelColorConstant,
}

var statusLabelDescriptions = map[workflow.State]string{
	workflow.StateBacklog:                    "Not yet planned",
	workflow.StatePlanning:                   "Plan being written",
	workflow.StateAwaitingPlanApproval:       "Plan submitted for approval",
	workflow.StatePlanApproved:               "Plan approved, work not started",
	workflow.StateInProgress:                 "Work in progress",
	workflow.StateAwaitingCompletionApproval: "Work submitted for approval",
	workflow.StateClosed:                     "Work approved and closed",
}

var typeLabelColors = map[workflow.IssueType]string{
	workflow.IssueTypeEpic:    epicLabelColorConstant,
	workflow.IssueTypeTask:    taskLabelColorConstant,
	workflow.IssueTypeSubtask: subtaskLabelColorConstant,
}

var typeLabelDescriptions = map[workflow.IssueType]string{
	workflow.IssueTypeEpic:    "Epic: a large body of work",
	workflow.IssueTypeTask:    "Task: a child of an epic",
	workflow.IssueTypeSubtask: "Sub-task: a child of a task",
}

// WorkflowLabels lists every label the managed workflow relies on, states
// first in lifecycle order, then types.
func WorkflowLabels() []githubcli.Label {
	var labels []githubcli.Label
	for _, state := range workflow.AllStates() {
		labels = append(labels, githubcli.Label{
			Name:        state.StatusLabel(),
			Color:       statusLabelColors[state],
			Description: statusLabelDescriptions[state],
		})
	}
	for _, issueType := range workflow.AllIssueTypes() {
		labels = append(labels, githubcli.Label{
			Name:        issueType.TypeLabel(),
			Color:       typeLabelColors[issueType],
			Description: typeLabelDescriptions[issueType],
		})
	}
	return labels
}
