package understanding

import "github.com/invopop/jsonschema"

type eventsPayload struct {
	Course string         `json:"course" jsonschema:"description=Course name or code named by the syllabus, empty if none"`
	Events []eventPayload `json:"events" jsonschema:"description=Every dated deliverable in the syllabus"`
}

type eventPayload struct {
	Date        string `json:"date" jsonschema:"description=Calendar date in YYYY-MM-DD"`
	Title       string `json:"title" jsonschema:"description=Short title such as Homework 3 or Midterm Exam"`
	Description string `json:"description" jsonschema:"description=Extra details from the syllabus, empty if none"`
	Course      string `json:"course" jsonschema:"description=Course of this item, empty if the same as the document"`
	Type        string `json:"type" jsonschema:"enum=Assignment,enum=Homework,enum=Quiz,enum=Exam,enum=Project,enum=Lab,enum=Reading,enum=Other"`
}

func responseSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schema := reflector.Reflect(&eventsPayload{})
	schema.Version = ""
	schema.ID = ""
	return schema
}
