// Package schema validates the JSON payloads returned by model-backed
// collaborators before they are decoded into domain types.
//
// Collaborator output is untrusted: a model may drop a required field, emit
// a score outside [1.0, 5.0], or invent an edit action. Validating the raw
// payload first lets the engine classify the failure as a malformed
// response instead of surfacing a confusing decode error.
//
// A Schema maps field names to types:
//
//	s := schema.Schema{
//	    "restaurant_name":   schema.String(),
//	    "brief_description": schema.Optional(schema.String()),
//	    "score":             schema.Range(1.0, 5.0),
//	}
//
//	var payload map[string]any
//	_ = json.Unmarshal(raw, &payload)
//	if err := schema.Validate(s, payload); err != nil {
//	    return fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
//	}
//
// The schemas for the extraction, ranking and edit payloads ship with the
// package (ExtractionItem, RankingPayload, EditPayload). Prompt documents
// may also declare an expected response shape as a map of field names to
// type strings; ParseTypeMap turns that declaration into a Schema:
//
//	s, err := schema.ParseTypeMap(map[string]string{
//	    "restaurant_name": "string",
//	    "tags":            "[string]",
//	})
//
// The package has no dependencies beyond the standard library so it can sit
// under any adapter without dragging a stack along.
package schema
