package shared

// Task types handled by the worker.
const (
	TypeProcessImage = "image:process"
	TypeDeleteImages = "image:delete"
	TypeSlugAudit    = "slug:audit"
)

// Queues, with the weight the worker gives each.
const (
	QueueImages      = "images"
	QueueMaintenance = "maintenance"
)

var QueueWeights = map[string]int{
	QueueImages:      6,
	QueueMaintenance: 2,
}

// ProcessImagePayload asks the worker to render the variants of one image.
type ProcessImagePayload struct {
	ImageID   int64  `json:"imageId"`
	ObjectKey string `json:"objectKey"`
}

// DeleteImagesPayload removes every stored object under Prefix.
type DeleteImagesPayload struct {
	ImageID int64  `json:"imageId"`
	Prefix  string `json:"prefix"`
}

// SlugAuditPayload runs the slug audit. No kinds means all of them.
type SlugAuditPayload struct {
	Kinds []string `json:"kinds,omitempty"`
	Apply bool     `json:"apply"`
}
