package models

// StatusInfo is display metadata for an appeal status.
type StatusInfo struct {
	Key         AppealStatus `json:"key"`
	Label       string       `json:"label"`
	Description string       `json:"description"`
	Color       string       `json:"color"`
	Icon        string       `json:"icon"`
}

// PriorityInfo is display metadata for an appeal priority.
type PriorityInfo struct {
	Key   AppealPriority `json:"key"`
	Label string         `json:"label"`
	Color string         `json:"color"`
}

var appealStatuses = []AppealStatus{
	AppealStatusNew,
	AppealStatusInProgress,
	AppealStatusWaiting,
	AppealStatusClosed,
}

var appealPriorities = []AppealPriority{
	AppealPriorityLow,
	AppealPriorityNormal,
	AppealPriorityHigh,
	AppealPriorityUrgent,
}

var statusCatalog = map[AppealStatus]StatusInfo{
	AppealStatusNew: {
		Key:         AppealStatusNew,
		Label:       "New",
		Description: "The appeal has been received and is waiting for triage",
		Color:       "blue",
		Icon:        "inbox",
	},
	AppealStatusInProgress: {
		Key:         AppealStatusInProgress,
		Label:       "In progress",
		Description: "The council is working on the appeal",
		Color:       "amber",
		Icon:        "loader",
	},
	AppealStatusWaiting: {
		Key:         AppealStatusWaiting,
		Label:       "Waiting",
		Description: "More information is needed from the submitter or a third party",
		Color:       "purple",
		Icon:        "clock",
	},
	AppealStatusClosed: {
		Key:         AppealStatusClosed,
		Label:       "Closed",
		Description: "The appeal has been resolved",
		Color:       "green",
		Icon:        "check-circle",
	},
}

var priorityCatalog = map[AppealPriority]PriorityInfo{
	AppealPriorityLow:    {Key: AppealPriorityLow, Label: "Low", Color: "gray"},
	AppealPriorityNormal: {Key: AppealPriorityNormal, Label: "Normal", Color: "blue"},
	AppealPriorityHigh:   {Key: AppealPriorityHigh, Label: "High", Color: "orange"},
	AppealPriorityUrgent: {Key: AppealPriorityUrgent, Label: "Urgent", Color: "red"},
}

// AppealStatuses returns the canonical ordered list of statuses.
func AppealStatuses() []AppealStatus {
	out := make([]AppealStatus, len(appealStatuses))
	copy(out, appealStatuses)
	return out
}

// AppealPriorities returns the canonical ordered list of priorities.
func AppealPriorities() []AppealPriority {
	out := make([]AppealPriority, len(appealPriorities))
	copy(out, appealPriorities)
	return out
}

// Valid reports whether s is one of the canonical statuses.
func (s AppealStatus) Valid() bool {
	_, ok := statusCatalog[s]
	return ok
}

// Valid reports whether p is one of the canonical priorities.
func (p AppealPriority) Valid() bool {
	_, ok := priorityCatalog[p]
	return ok
}

// DescribeStatus returns display metadata, falling back to the "new" entry for
// unknown keys so that statuses added later still render.
func DescribeStatus(status AppealStatus) StatusInfo {
	if info, ok := statusCatalog[status]; ok {
		return info
	}
	return statusCatalog[AppealStatusNew]
}

// DescribePriority returns display metadata, falling back to "normal".
func DescribePriority(priority AppealPriority) PriorityInfo {
	if info, ok := priorityCatalog[priority]; ok {
		return info
	}
	return priorityCatalog[AppealPriorityNormal]
}

// ValidTransitions lists the statuses reachable from status. Movement is
// free-form: every canonical status other than the current one is allowed.
func ValidTransitions(status AppealStatus) []AppealStatus {
	out := make([]AppealStatus, 0, len(appealStatuses)-1)
	for _, candidate := range appealStatuses {
		if candidate != status {
			out = append(out, candidate)
		}
	}
	return out
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to AppealStatus) bool {
	if !to.Valid() || from == to {
		return false
	}
	for _, candidate := range ValidTransitions(from) {
		if candidate == to {
			return true
		}
	}
	return false
}
