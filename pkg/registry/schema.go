// pkg/registry/schema.go
package registry

// ActivityRegistry is the catalog of pipeline activities backing the BPMN
// service tasks. configs/activity-registry.json holds the committed copy.
type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

// Activity describes one service task: the Zeebe task type its worker
// subscribes to, the variables it reads and writes, and the error codes
// it can fail with.
type Activity struct {
	ID                   string                 `json:"id"`
	DisplayName          string                 `json:"displayName"`
	Description          string                 `json:"description"`
	Category             string                 `json:"category"`
	Version              string                 `json:"version"`
	TaskType             string                 `json:"taskType"`
	ImplementationStatus string                 `json:"implementationStatus"`
	InputSchema          map[string]interface{} `json:"inputSchema"`
	OutputSchema         map[string]interface{} `json:"outputSchema"`
	ErrorCodes           []string               `json:"errorCodes"`
	Timeout              string                 `json:"timeout"`
	Retries              int                    `json:"retries"`
	Workflows            []string               `json:"workflows"`
	Tags                 []string               `json:"tags"`
}

// FindByID returns the activity with the given ID, or nil.
func (r *ActivityRegistry) FindByID(id string) *Activity {
	for i := range r.Activities {
		if r.Activities[i].ID == id {
			return &r.Activities[i]
		}
	}
	return nil
}

// FindByTaskType returns the activity whose worker subscribes to the given
// task type, or nil.
func (r *ActivityRegistry) FindByTaskType(taskType string) *Activity {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i]
		}
	}
	return nil
}
