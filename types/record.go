package types

// SourceLabel marks every record this pipeline produces.
const SourceLabel = "Caravel"

// InventoryRecord is the canonical, provider-agnostic representation
// persisted per discovered resource. One record exists per (subscription,
// kind, resource id); later writes fully overwrite earlier ones, and the
// capture time is the only field guaranteed to change across identical
// re-fetches.
type InventoryRecord struct {
	SubscriptionID   string                   `json:"azureSubscriptionId"`
	SubscriptionName string                   `json:"azureSubscriptionName"`
	TenantID         string                   `json:"azureTenantId"`
	TenantName       string                   `json:"azureTenantName"`
	ResourceType     string                   `json:"resourceType"`
	Source           string                   `json:"source"`
	CaptureTime      string                   `json:"configurationItemCaptureTime"`
	Configuration    RawResource              `json:"configuration"`
	Supplementary    map[string][]RawResource `json:"supplementaryConfiguration"`
	Region           string                   `json:"azureRegion"`
	ResourceID       string                   `json:"resourceId"`
	CreationTime     string                   `json:"resourceCreationTime"`
	Errors           map[string]string        `json:"errors"`
}

// FailureEvent is one structured failure published to the error channel.
// Write-once, append-only; the pipeline never reads these back.
type FailureEvent struct {
	Event        string `json:"event"`
	FunctionName string `json:"function_name"`
	RequestID    string `json:"request_id"`
	LogGroup     string `json:"log_group"`
	LogStream    string `json:"log_stream"`
	Error        string `json:"error"`
	Message      string `json:"message"`
}
