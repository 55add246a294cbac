package telegram

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/m3rciful/regbot/core/logger"
	"github.com/m3rciful/regbot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

const wireComponent = "tg.wire"

// Registry holds bot commands and callbacks.
type Registry struct {
	commands         map[string]commands.Command
	callbacks        map[string]tele.HandlerFunc
	callbacksMu      sync.RWMutex
	callbackNotFound tele.HandlerFunc
}

// NewRegistry creates an empty Registry whose unknown-callback fallback just
// acknowledges the press.
func NewRegistry() *Registry {
	return &Registry{
		commands:  make(map[string]commands.Command),
		callbacks: make(map[string]tele.HandlerFunc),
		callbackNotFound: func(c tele.Context) error {
			return c.Respond()
		},
	}
}

// CommandName returns name with exactly one leading slash.
func CommandName(name string) string {
	return "/" + strings.TrimPrefix(strings.TrimSpace(name), "/")
}

// RegisterCommand adds a new command. Invalid and duplicate entries are
// logged and skipped.
func (r *Registry) RegisterCommand(name string, cmd commands.Command) {
	ctx := logger.Background()
	if r == nil || name == "" || cmd.Handler == nil || cmd.Description == "" {
		logger.Warn(ctx, wireComponent, "register.command",
			slog.String("status", "skip"),
			slog.String("name", name),
			slog.String("reason", "invalid"),
		)
		return
	}
	if name[0] != '/' {
		logger.Warn(ctx, wireComponent, "register.command",
			slog.String("status", "skip"),
			slog.String("name", name),
			slog.String("reason", "no_slash_prefix"),
		)
		return
	}
	if _, exists := r.commands[name]; exists {
		logger.Warn(ctx, wireComponent, "register.command",
			slog.String("status", "skip"),
			slog.String("name", name),
			slog.String("reason", "duplicate"),
		)
		return
	}
	r.commands[name] = cmd
}

// ListCommands returns the commands sorted by name, optionally only those
// meant for the public menu.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	var list []tele.Command
	for cmd, meta := range r.commands {
		if visibleOnly && !meta.Visible() {
			continue
		}
		list = append(list, tele.Command{Text: strings.TrimPrefix(cmd, "/"), Description: meta.Description})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Text < list[j].Text })
	return list
}

// LookupCommand searches for a command by name or its aliases and returns the canonical key with metadata if found.
func (r *Registry) LookupCommand(name string) (string, commands.Command, bool) {
	name = CommandName(name)
	if cmd, ok := r.commands[name]; ok {
		return name, cmd, true
	}
	for key, cmd := range r.commands {
		for _, alias := range cmd.Aliases {
			if CommandName(alias) == name {
				return key, cmd, true
			}
		}
	}
	return "", commands.Command{}, false
}

// Commands returns all registered commands.
func (r *Registry) Commands() map[string]commands.Command {
	return r.commands
}

// RegisterCallback adds a callback handler mapped to its key.
func (r *Registry) RegisterCallback(key string, handler tele.HandlerFunc) error {
	if r == nil || key == "" || handler == nil {
		logger.Warn(logger.Background(), wireComponent, "register.callback",
			slog.String("status", "skip"),
			slog.String("key", key),
			slog.String("reason", "invalid"),
		)
		return errors.New("invalid callback registration")
	}
	r.callbacksMu.Lock()
	defer r.callbacksMu.Unlock()
	if _, exists := r.callbacks[key]; exists {
		logger.Warn(logger.Background(), wireComponent, "register.callback",
			slog.String("status", "skip"),
			slog.String("key", key),
			slog.String("reason", "duplicate"),
		)
		return fmt.Errorf("callback already registered: %s", key)
	}
	r.callbacks[key] = handler
	return nil
}

// RegisterCallbacks binds one handler to several keys.
func (r *Registry) RegisterCallbacks(handler tele.HandlerFunc, keys ...string) error {
	var errs []error
	for _, key := range keys {
		if err := r.RegisterCallback(key, handler); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// GetCallback safely returns handler by key.
func (r *Registry) GetCallback(key string) (tele.HandlerFunc, bool) {
	r.callbacksMu.RLock()
	defer r.callbacksMu.RUnlock()
	h, ok := r.callbacks[key]
	return h, ok && h != nil
}

// ListCallbacks returns sorted keys (for diagnostics).
func (r *Registry) ListCallbacks() []string {
	r.callbacksMu.RLock()
	defer r.callbacksMu.RUnlock()
	names := make([]string, 0, len(r.callbacks))
	for k := range r.callbacks {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// SetCallbackNotFound replaces the fallback handler for unknown callbacks.
func (r *Registry) SetCallbackNotFound(h tele.HandlerFunc) {
	if h != nil {
		r.callbackNotFound = h
	}
}

// CallbackNotFound returns the current fallback callback handler.
func (r *Registry) CallbackNotFound() tele.HandlerFunc {
	return r.callbackNotFound
}

// InitBotCommands publishes the public commands to the Telegram menu.
func InitBotCommands(bot *tele.Bot, reg *Registry) {
	list := reg.ListCommands(true)
	if err := bot.SetCommands(list); err != nil {
		logger.Error(logger.Background(), wireComponent, "register.commands",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return
	}
	logger.Debug(logger.Background(), wireComponent, "register.commands",
		slog.String("status", "ok"),
		slog.Int("count", len(list)),
	)
}
