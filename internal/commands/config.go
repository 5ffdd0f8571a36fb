// ABOUTME: Guild config command handlers invoked by the command-dispatch pipeline
// ABOUTME: Parses operator input, replies to the user and mutates the store

package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nightbus/guildcore/internal/registry"
	"github.com/nightbus/guildcore/internal/store"
)

// Replier sends a reply back to the user who issued a command.
// Implemented by the chat transport layer.
type Replier interface {
	Reply(text string)
}

// Handler executes guild configuration commands. Access-level gating of who
// may invoke these happens upstream in the dispatch pipeline.
type Handler struct {
	store  store.Store
	logger *slog.Logger
}

// NewHandler creates a Handler over the given store.
func NewHandler(s store.Store) *Handler {
	return &Handler{
		store:  s,
		logger: slog.Default().With("component", "commands"),
	}
}

// SetConfig handles "setconfig <key> <value>". Unrecognized keys and
// non-boolean values are reported to the user via reply and are not faults;
// persistence failures are returned to the dispatcher.
func (h *Handler) SetConfig(ctx context.Context, guildID, actorID, key, rawValue string, r Replier) error {
	if !registry.Contains(key) {
		r.Reply("Not a valid configuration name. Available names include:\n```" +
			strings.Join(registry.Names(), "\n") + "```")
		return nil
	}

	var value bool
	switch strings.ToLower(rawValue) {
	case "true":
		value = true
	case "false":
		value = false
	default:
		r.Reply("Config value must be a boolean.")
		return nil
	}

	if _, err := h.store.RegisterGuildIfMissing(ctx, guildID); err != nil {
		return err
	}
	if _, err := h.store.SetBooleanConfig(ctx, guildID, key, value); err != nil {
		return err
	}

	if err := h.store.AppendConfigAudit(ctx, &store.ConfigAuditEntry{
		GuildID:   guildID,
		ActorID:   actorID,
		Action:    store.AuditSetConfig,
		ConfigKey: key,
		Value:     strings.ToLower(rawValue),
	}); err != nil {
		h.logger.Error("failed to record config audit entry", "guild", guildID, "error", err)
	}

	r.Reply(fmt.Sprintf("**%s** successfully set to **%s**.", key, strings.ToLower(rawValue)))
	return nil
}

// GetConfig handles "getconfig <key>", replying with the stored value.
func (h *Handler) GetConfig(ctx context.Context, guildID, key string, r Replier) error {
	value, err := h.store.GetBooleanConfig(ctx, guildID, key)
	if errors.Is(err, store.ErrUnknownConfigKey) || errors.Is(err, store.ErrNotFound) {
		r.Reply("Not a valid configuration name. Available names include:\n```" +
			strings.Join(registry.Names(), "\n") + "```")
		return nil
	}
	if err != nil {
		return err
	}

	r.Reply(fmt.Sprintf("**%s** is set to **%t**.", key, value))
	return nil
}

// AddTarget handles "addtarget <target>" for a guild.
func (h *Handler) AddTarget(ctx context.Context, guildID, actorID, target string, r Replier) error {
	if _, err := h.store.RegisterGuildIfMissing(ctx, guildID); err != nil {
		return err
	}
	if _, err := h.store.AddTarget(ctx, guildID, target); err != nil {
		return err
	}

	if err := h.store.AppendConfigAudit(ctx, &store.ConfigAuditEntry{
		GuildID: guildID,
		ActorID: actorID,
		Action:  store.AuditAddTarget,
		Value:   target,
	}); err != nil {
		h.logger.Error("failed to record config audit entry", "guild", guildID, "error", err)
	}

	r.Reply(fmt.Sprintf("Added target **%s**.", target))
	return nil
}

// RemoveTarget handles "removetarget <target>" for a guild. A target that
// is not on the list is reported to the user, not treated as a fault.
func (h *Handler) RemoveTarget(ctx context.Context, guildID, actorID, target string, r Replier) error {
	_, err := h.store.RemoveTarget(ctx, guildID, target)
	if errors.Is(err, store.ErrNotFound) {
		r.Reply(fmt.Sprintf("**%s** is not on the target list.", target))
		return nil
	}
	if err != nil {
		return err
	}

	if err := h.store.AppendConfigAudit(ctx, &store.ConfigAuditEntry{
		GuildID: guildID,
		ActorID: actorID,
		Action:  store.AuditRemoveTarget,
		Value:   target,
	}); err != nil {
		h.logger.Error("failed to record config audit entry", "guild", guildID, "error", err)
	}

	r.Reply(fmt.Sprintf("Removed target **%s**.", target))
	return nil
}
