package schema

// Declared schemas for the collaborator payloads. The adapters validate
// raw JSON against these before decoding into domain types; field names
// follow the prompt contracts in assets/prompts.

// ExtractionItem is the shape of one restaurant in an extraction response.
func ExtractionItem() Schema {
	return Schema{
		"restaurant_name":   String(),
		"booking_website":   Optional(String()),
		"brief_description": Optional(String()),
		"cuisine_type":      Optional(String()),
		"price_range":       Optional(String()),
	}
}

// RankingPayload is the shape of a ranking response. Scores live on the
// 1.0-5.0 scale; anything outside is malformed, not clamped.
func RankingPayload() Schema {
	return Schema{
		"score":         Range(1.0, 5.0),
		"justification": Optional(String()),
	}
}

// EditPayload is the shape of a parsed edit command.
func EditPayload() Schema {
	return Schema{
		"action":          Enum("remove", "update", "add", "unknown"),
		"restaurant_name": Optional(String()),
		"field":           Optional(String()),
		"new_value":       Optional(String()),
	}
}
