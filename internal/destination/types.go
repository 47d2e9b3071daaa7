package destination

// PropertyType is a destination database field type as reported by schema
// introspection. The mapper switches on these to shape property values.
type PropertyType string

const (
	TypeTitle    PropertyType = "title"
	TypeRichText PropertyType = "rich_text"
	TypeNumber   PropertyType = "number"
	TypeDate     PropertyType = "date"
	TypeSelect   PropertyType = "select"
	TypeStatus   PropertyType = "status"
	TypeEmail    PropertyType = "email"
	TypeURL      PropertyType = "url"
	TypeCheckbox PropertyType = "checkbox"
)

// Schema is the live property map of one destination database.
type Schema struct {
	DatabaseID string                  `json:"database_id"`
	Properties map[string]PropertyType `json:"properties"`
}

// Properties is the mapped payload written to a destination, keyed by
// destination property name. Values are already shaped per the property's
// declared type; unmatched properties are absent, never null.
type Properties map[string]interface{}

// Title shapes a title property value.
func Title(s string) interface{} {
	return map[string]interface{}{
		"title": []interface{}{richTextFragment(s)},
	}
}

// RichText shapes a rich_text property value.
func RichText(s string) interface{} {
	return map[string]interface{}{
		"rich_text": []interface{}{richTextFragment(s)},
	}
}

// Number shapes a number property value.
func Number(f float64) interface{} {
	return map[string]interface{}{"number": f}
}

// Date shapes a date property value from an ISO-8601 string.
func Date(iso string) interface{} {
	return map[string]interface{}{
		"date": map[string]interface{}{"start": iso},
	}
}

// Select shapes a single-choice property value.
func Select(name string) interface{} {
	return map[string]interface{}{
		"select": map[string]interface{}{"name": name},
	}
}

// StatusValue shapes a status property value.
func StatusValue(name string) interface{} {
	return map[string]interface{}{
		"status": map[string]interface{}{"name": name},
	}
}

// Email shapes an email property value.
func Email(s string) interface{} {
	return map[string]interface{}{"email": s}
}

// URL shapes a url property value.
func URL(s string) interface{} {
	return map[string]interface{}{"url": s}
}

// Checkbox shapes a checkbox property value.
func Checkbox(b bool) interface{} {
	return map[string]interface{}{"checkbox": b}
}

func richTextFragment(s string) map[string]interface{} {
	return map[string]interface{}{
		"text": map[string]interface{}{"content": s},
	}
}
