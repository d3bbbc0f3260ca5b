// Package discord hosts the Discord-facing surface of the service: the
// signed interaction endpoint, the slash-command dispatch, and the REST
// client used to drive threads and messages.
package discord

import "encoding/json"

// Interaction types received on the interaction endpoint.
const (
	InteractionPing               = 1
	InteractionApplicationCommand = 2
)

// Interaction response types sent back to Discord.
const (
	ResponsePong                   = 1
	ResponseDeferredChannelMessage = 5
)

// Interaction is the subset of Discord's interaction payload the service
// uses.
type Interaction struct {
	ID            string       `json:"id"`
	Type          int          `json:"type"`
	Token         string       `json:"token"`
	ApplicationID string       `json:"application_id"`
	ChannelID     string       `json:"channel_id"`
	Data          *CommandData `json:"data,omitempty"`
}

// CommandData identifies the invoked slash command and its options.
type CommandData struct {
	Name    string          `json:"name"`
	Options []CommandOption `json:"options,omitempty"`
}

// CommandOption is one argument of a slash command. Value is kept raw since
// option types vary; StringValue decodes the common case.
type CommandOption struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value,omitempty"`
}

// StringValue returns the option value as a string, or "" when it is not
// one.
func (o CommandOption) StringValue() string {
	var s string
	if err := json.Unmarshal(o.Value, &s); err != nil {
		return ""
	}
	return s
}

// InteractionResponse is the immediate reply to an interaction.
type InteractionResponse struct {
	Type int `json:"type"`
}
