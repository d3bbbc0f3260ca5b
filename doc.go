// Package caravan is a multi-agent travel-planning service driven by signed
// Discord interactions.
//
// A planning request is decomposed into a dependency-ordered set of subtasks
// by an LLM planner, each subtask is fanned out to a pool of heterogeneous
// model providers, a designated agent model consolidates the pool's answers,
// the Transport agent may enrich its answer through a bounded tool-call loop
// against a maps gateway, and a final synthesis pass combines all subtask
// results into one response delivered back to a Discord thread. The full
// conversation trace is persisted as a PlanRecord.
//
// The root package holds the domain types and the orchestration engine.
// Adapters live in subpackages: provider/openaicompat and
// provider/openairesponses for LLM backends, maps/googlemaps for the maps
// gateway, discord for the chat surface and interaction front-end,
// store/mongo and store/sqlite for persistence, and observer for OTEL
// instrumentation. Wiring lives in cmd/caravan.
package caravan
