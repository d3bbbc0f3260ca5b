package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	caravan "github.com/nevindra/caravan"
)

// CommandFunc handles one slash command after the deferred acknowledgement
// has been sent. It runs on its own goroutine, detached from the request
// context.
type CommandFunc func(ctx context.Context, interaction Interaction) error

// PlanRunner runs one travel plan to completion. *caravan.Flow implements
// it; observability wrappers layer on top.
type PlanRunner interface {
	Run(ctx context.Context, req caravan.PlanRequest) error
}

// Handler serves POST /api/discord/interaction. Commands are dispatched
// through an explicit table built at construction time.
type Handler struct {
	commands map[string]CommandFunc
	logger   *slog.Logger
}

// NewHandler builds the interaction handler with the standard command set:
// /plan runs the full planning flow, /ping reports round-trip latency.
func NewHandler(flow PlanRunner, client *Client, logger *slog.Logger) *Handler {
	h := &Handler{
		commands: make(map[string]CommandFunc),
		logger:   logger,
	}
	h.commands["plan"] = planCommand(flow)
	h.commands["ping"] = pingCommand(client)
	return h
}

// ServeHTTP decodes the (already signature-verified) interaction and
// replies: pong for pings, a deferred acknowledgement for known commands
// with the work spawned in the background, 400 for anything else.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var interaction Interaction
	if err := json.NewDecoder(r.Body).Decode(&interaction); err != nil {
		h.logger.Error("failed to decode incoming interaction", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch interaction.Type {
	case InteractionPing:
		h.respond(w, InteractionResponse{Type: ResponsePong})

	case InteractionApplicationCommand:
		if interaction.Data == nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		command, ok := h.commands[interaction.Data.Name]
		if !ok {
			h.logger.Warn("unknown command", "command", interaction.Data.Name)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		h.respond(w, InteractionResponse{Type: ResponseDeferredChannelMessage})

		// The plan outlives this request; detach from its cancellation.
		ctx := context.WithoutCancel(r.Context())
		go func() {
			if err := command(ctx, interaction); err != nil {
				h.logger.Error("command failed", "command", interaction.Data.Name, "error", err)
			}
		}()

	default:
		w.WriteHeader(http.StatusBadRequest)
	}
}

func (h *Handler) respond(w http.ResponseWriter, resp InteractionResponse) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to write interaction response", "error", err)
	}
}

// planCommand extracts the prompt option and runs the planning flow.
func planCommand(flow PlanRunner) CommandFunc {
	return func(ctx context.Context, interaction Interaction) error {
		prompt := ""
		if len(interaction.Data.Options) > 0 {
			prompt = interaction.Data.Options[0].StringValue()
		}
		return flow.Run(ctx, caravan.PlanRequest{
			InteractionToken: interaction.Token,
			ChannelID:        interaction.ChannelID,
			UserPrompt:       prompt,
		})
	}
}

// pingCommand posts a message and edits it with the observed send latency.
func pingCommand(client *Client) CommandFunc {
	return func(ctx context.Context, interaction Interaction) error {
		start := time.Now()
		messageID, err := client.SendMessage(ctx, interaction.ChannelID, "Pinging...")
		if err != nil {
			return err
		}
		elapsed := time.Since(start)
		return client.EditMessage(ctx, interaction.ChannelID, messageID,
			fmt.Sprintf("Latency: %d ms", elapsed.Milliseconds()))
	}
}
