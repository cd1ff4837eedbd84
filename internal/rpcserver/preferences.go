package rpcserver

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/xeipuuv/gojsonschema"

	"github.com/gauntlet-host/launcherd/internal/domain"
)

// handleSetPreferenceValue validates the request body's raw "value" field
// against a JSON Schema derived from the target preference's declared
// PreferenceSchema (kind, enum options, required) before converting it into
// a domain.PreferenceValue and applying it.
func (s *Server) handleSetPreferenceValue(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PluginID     string          `json:"plugin_id"`
		EntrypointID string          `json:"entrypoint_id"`
		Name         string          `json:"name"`
		Value        json.RawMessage `json:"value"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	pluginID := domain.PluginID(req.PluginID)
	schema, ok, err := s.manager.PreferenceSchema(r.Context(), pluginID, req.EntrypointID, req.Name)
	if err != nil {
		s.handleError(w, err)
		return
	}
	if !ok {
		s.badRequest(w, fmt.Sprintf("preference %q is not declared", req.Name))
		return
	}

	if err := validatePreferenceJSON(schema, req.Value); err != nil {
		s.badRequest(w, err.Error())
		return
	}

	value, err := decodePreferenceValue(schema, req.Value)
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}

	if err := s.manager.SetPreferenceValue(r.Context(), pluginID, req.EntrypointID, req.Name, value); err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// preferenceJSONSchema builds the JSON Schema document a value for the given
// PreferenceSchema must satisfy.
func preferenceJSONSchema(schema domain.PreferenceSchema) map[string]interface{} {
	switch schema.Kind {
	case domain.PreferenceNumber:
		return map[string]interface{}{"type": "number"}
	case domain.PreferenceString:
		return map[string]interface{}{"type": "string"}
	case domain.PreferenceBool:
		return map[string]interface{}{"type": "boolean"}
	case domain.PreferenceEnum:
		values := make([]string, len(schema.EnumOptions))
		for i, o := range schema.EnumOptions {
			values[i] = o.Value
		}
		return map[string]interface{}{"type": "string", "enum": values}
	case domain.PreferenceListOfStrings:
		return map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}}
	case domain.PreferenceListOfNumbers:
		return map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "number"}}
	case domain.PreferenceListOfEnums:
		values := make([]string, len(schema.EnumOptions))
		for i, o := range schema.EnumOptions {
			values[i] = o.Value
		}
		return map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string", "enum": values}}
	default:
		return map[string]interface{}{}
	}
}

func validatePreferenceJSON(schema domain.PreferenceSchema, raw json.RawMessage) error {
	schemaDoc, err := json.Marshal(preferenceJSONSchema(schema))
	if err != nil {
		return fmt.Errorf("rpcserver: build preference schema: %w", err)
	}
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaDoc), gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("rpcserver: preference value schema check failed: %w", err)
	}
	if !result.Valid() {
		return fmt.Errorf("rpcserver: preference value does not match its declared kind %q", schema.Kind)
	}
	return nil
}

func decodePreferenceValue(schema domain.PreferenceSchema, raw json.RawMessage) (domain.PreferenceValue, error) {
	switch schema.Kind {
	case domain.PreferenceNumber:
		var n float64
		if err := json.Unmarshal(raw, &n); err != nil {
			return domain.PreferenceValue{}, err
		}
		return domain.PreferenceValue{Kind: domain.PreferenceNumber, Number: n}, nil
	case domain.PreferenceString, domain.PreferenceEnum:
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return domain.PreferenceValue{}, err
		}
		return domain.PreferenceValue{Kind: schema.Kind, String: str}, nil
	case domain.PreferenceBool:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return domain.PreferenceValue{}, err
		}
		return domain.PreferenceValue{Kind: domain.PreferenceBool, Bool: b}, nil
	case domain.PreferenceListOfStrings, domain.PreferenceListOfEnums:
		var list []string
		if err := json.Unmarshal(raw, &list); err != nil {
			return domain.PreferenceValue{}, err
		}
		return domain.PreferenceValue{Kind: schema.Kind, ListStrings: list}, nil
	case domain.PreferenceListOfNumbers:
		var list []float64
		if err := json.Unmarshal(raw, &list); err != nil {
			return domain.PreferenceValue{}, err
		}
		return domain.PreferenceValue{Kind: domain.PreferenceListOfNumbers, ListNumbers: list}, nil
	default:
		return domain.PreferenceValue{}, fmt.Errorf("rpcserver: unknown preference kind %q", schema.Kind)
	}
}
