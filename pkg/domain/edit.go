package domain

// EditAction is the verb of a parsed edit command.
type EditAction string

const (
	EditUnknown EditAction = "unknown"
	EditRemove  EditAction = "remove"
	EditUpdate  EditAction = "update"
	EditAdd     EditAction = "add"
)

// EditCommand is the structured form of a conversational edit utterance,
// produced by the Extraction/Ranking Collaborator. Only remove is applied;
// update and add report as unsupported.
type EditCommand struct {
	Action   EditAction `json:"action" yaml:"action" mapstructure:"action"`
	Name     string     `json:"restaurant_name" yaml:"restaurant_name" mapstructure:"restaurant_name"`
	Field    string     `json:"field,omitempty" yaml:"field,omitempty" mapstructure:"field"`
	NewValue string     `json:"new_value,omitempty" yaml:"new_value,omitempty" mapstructure:"new_value"`
}
