package reconcile

// Callback is the completion payload posted by the external
// document-intelligence service. Optional pointer fields distinguish
// "absent" from zero values so partial callbacks never null-out stored data.
type Callback struct {
	Success         bool    `json:"success"`
	PDFName         string  `json:"pdfName"`
	Message         string  `json:"message"`
	ChunksProcessed *int    `json:"chunksProcessed,omitempty"`
	ProcessingTime  *string `json:"processingTime,omitempty"`
	CollectionName  *string `json:"collectionName,omitempty"`
	DeviceID        string  `json:"deviceId,omitempty"`

	Rules             []CallbackRule        `json:"rules,omitempty"`
	MaintenanceTasks  []CallbackMaintenance `json:"maintenanceTasks,omitempty"`
	SafetyPrecautions []CallbackPrecaution  `json:"safetyPrecautions,omitempty"`
}

// CallbackRule is one generated automation rule.
type CallbackRule struct {
	Name      string `json:"name"`
	Condition string `json:"condition"`
	Action    string `json:"action"`
	Priority  string `json:"priority"`
}

// CallbackMaintenance is one generated maintenance entry.
type CallbackMaintenance struct {
	TaskName        string `json:"taskName"`
	ComponentName   string `json:"componentName"`
	MaintenanceType string `json:"maintenanceType"`
	Frequency       string `json:"frequency"`
	Priority        string `json:"priority"`
	Description     string `json:"description"`
}

// CallbackPrecaution is one generated safety precaution.
type CallbackPrecaution struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Severity    string `json:"severity"`
}
