package maintenance

import "time"

const dateLayout = "2006-01-02"

type taskResponse struct {
	ID               string     `json:"id"`
	DeviceID         string     `json:"deviceId"`
	DeviceName       string     `json:"deviceName,omitempty"`
	TaskName         string     `json:"taskName"`
	ComponentName    string     `json:"componentName,omitempty"`
	MaintenanceType  string     `json:"maintenanceType"`
	Frequency        string     `json:"frequency,omitempty"`
	LastMaintenance  *string    `json:"lastMaintenance,omitempty"`
	NextMaintenance  string     `json:"nextMaintenance"`
	Priority         string     `json:"priority"`
	Status           string     `json:"status"`
	LastCycleOutcome string     `json:"lastCycleOutcome"`
	AssignedTo       *string    `json:"assignedTo,omitempty"`
	AssignedBy       *string    `json:"assignedBy,omitempty"`
	AssignedAt       *time.Time `json:"assignedAt,omitempty"`
	Description      string     `json:"description,omitempty"`
	Notes            string     `json:"notes,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

func toResponse(task Task) taskResponse {
	resp := taskResponse{
		ID:               task.ID,
		DeviceID:         task.DeviceID,
		DeviceName:       task.DeviceName,
		TaskName:         task.TaskName,
		ComponentName:    task.ComponentName,
		MaintenanceType:  task.MaintenanceType,
		Frequency:        task.Frequency,
		NextMaintenance:  task.NextMaintenance.Format(dateLayout),
		Priority:         task.Priority,
		Status:           task.Status,
		LastCycleOutcome: task.LastCycleOutcome,
		AssignedTo:       task.AssignedTo,
		AssignedBy:       task.AssignedBy,
		AssignedAt:       task.AssignedAt,
		Description:      task.Description,
		Notes:            task.Notes,
		CreatedAt:        task.CreatedAt,
		UpdatedAt:        task.UpdatedAt,
	}
	if task.LastMaintenance != nil {
		formatted := task.LastMaintenance.Format(dateLayout)
		resp.LastMaintenance = &formatted
	}
	return resp
}

func toResponses(tasks []Task) []taskResponse {
	out := make([]taskResponse, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, toResponse(task))
	}
	return out
}
