package outbox

const profileUpdatedSchema = `{
  "type": "object",
  "title": "ProfileUpdated",
  "properties": {
    "tenant_id": {"type": "string"},
    "user_id": {"type": "string"},
    "due_date": {"type": "string", "format": "date"},
    "updated_at": {"type": "string", "format": "date-time"}
  },
  "required": ["tenant_id", "user_id", "due_date", "updated_at"],
  "additionalProperties": false
}`

const checklistChangedSchema = `{
  "type": "object",
  "title": "ChecklistChanged",
  "properties": {
    "tenant_id": {"type": "string"},
    "user_id": {"type": "string"},
    "subject": {"type": "string"},
    "item_count": {"type": "integer"},
    "done_count": {"type": "integer"},
    "occurred_at": {"type": "string", "format": "date-time"}
  },
  "required": ["tenant_id", "user_id", "subject", "item_count", "done_count", "occurred_at"],
  "additionalProperties": false
}`

const appointmentBookedSchema = `{
  "type": "object",
  "title": "AppointmentBooked",
  "properties": {
    "appointment_id": {"type": "string"},
    "tenant_id": {"type": "string"},
    "user_id": {"type": "string"},
    "provider": {"type": "string"},
    "starts_at": {"type": "string", "format": "date-time"}
  },
  "required": ["appointment_id", "tenant_id", "user_id", "provider", "starts_at"],
  "additionalProperties": false
}`

// SchemaMetadata pairs an event type with its registered JSON schema.
type SchemaMetadata struct {
	Schema string
}

var schemaCatalog = map[string]SchemaMetadata{
	"profile.updated":    {Schema: profileUpdatedSchema},
	"checklist.changed":  {Schema: checklistChangedSchema},
	"appointment.booked": {Schema: appointmentBookedSchema},
}
