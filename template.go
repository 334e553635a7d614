package mustache

import (
	"encoding/json"

	yaml "gopkg.in/yaml.v2"
)

func toJSONString(data any) (string, error) {
	out, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// JSONTemplate compiles template for producing JSON output: every
// interpolated value is run through encoding/json via toJSONString instead
// of html-escaped, so a plain {{x}} tag renders as a complete JSON value
// (quotes included for a string, none for a number) rather than bare
// escaped text. A literal quoted tag like "{{x}}" in a JSONTemplate therefore
// renders doubled quotes; when x is known to be a string and only its
// contents need JSON escaping, compile with WithEscapeMode(EscapeJSON) and a
// quoted tag instead.
func JSONTemplate(template string) (*Template, error) {
	return New().WithEscapeMode(Raw).WithValueStringer(toJSONString).CompileString(template)
}

// RenderJSON compiles template as a JSONTemplate and renders it against an
// arbitrary Go value. Unlike Template.Render's default policy, an
// unresolved path is an error rather than silently empty, since a dropped
// field is far more likely to produce broken JSON than a desired omission.
func RenderJSON(template string, data interface{}) (string, error) {
	tmpl, err := New().WithEscapeMode(Raw).WithValueStringer(toJSONString).WithErrors(true).CompileString(template)
	if err != nil {
		return "", err
	}
	return tmpl.Render(data)
}

// RenderYAML compiles template and renders it against data decoded from a
// YAML document, for the same reason RenderJSON needs no dedicated Context:
// yaml.v2 decodes into map[interface{}]interface{}/[]interface{}/scalar
// shapes that reflectContext's map handling already covers (its MapIndex
// path converts the lookup key to the map's own key type).
func RenderYAML(template string, yamlData string) (string, error) {
	var data interface{}
	if err := yaml.Unmarshal([]byte(yamlData), &data); err != nil {
		return "", err
	}
	tmpl, err := New().CompileString(template)
	if err != nil {
		return "", err
	}
	return tmpl.Render(data)
}
