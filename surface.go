package caravan

import "context"

// Embed is a rich status card rendered on the chat surface.
type Embed struct {
	Title       string
	Description string
	Color       int
	AuthorName  string
	AuthorIcon  string
}

// EmbedColor is the accent color used on every status embed.
const EmbedColor = 0x939C95

// SurfaceMessage identifies a message the service posted on the surface.
type SurfaceMessage struct {
	ID        string
	ChannelID string
}

// AppInfo describes the bot's own identity as reported by the surface,
// used to author status embeds.
type AppInfo struct {
	ID         string
	Name       string
	AvatarHash string
}

// AvatarURL returns the CDN address of the bot's avatar, or "" when the
// application has none.
func (a AppInfo) AvatarURL() string {
	if a.AvatarHash == "" {
		return ""
	}
	return "https://cdn.discordapp.com/avatars/" + a.ID + "/" + a.AvatarHash + ".webp?size=1024"
}

// ChatSurface is the chat platform a plan runs on. The flow talks to it for
// everything after the interaction ACK: editing the deferred response,
// creating the working thread, and streaming status and results into it.
type ChatSurface interface {
	// EditOriginal replaces the deferred interaction response with content.
	EditOriginal(ctx context.Context, interactionToken, content string) (SurfaceMessage, error)
	// CreateThread opens a thread on a message and returns the thread id.
	CreateThread(ctx context.Context, channelID, messageID, name string) (string, error)
	// SendMessage posts plain content to a channel or thread and returns
	// the new message's id.
	SendMessage(ctx context.Context, channelID, content string) (string, error)
	// SendEmbed posts an embed to a channel or thread and returns the new
	// message's id.
	SendEmbed(ctx context.Context, channelID string, embed Embed) (string, error)
	// EditEmbed replaces the embed of an existing message.
	EditEmbed(ctx context.Context, channelID, messageID string, embed Embed) error
	// AppInfo returns the bot's own application identity.
	AppInfo(ctx context.Context) (AppInfo, error)
}
