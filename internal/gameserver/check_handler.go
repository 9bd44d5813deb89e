package gameserver

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/pf2-flat-check/internal/game/condition"
	"github.com/cory-johannsen/pf2-flat-check/internal/game/dice"
	"github.com/cory-johannsen/pf2-flat-check/internal/game/flatcheck"
	"github.com/cory-johannsen/pf2-flat-check/internal/scripting"
	"github.com/cory-johannsen/pf2-flat-check/internal/storage/postgres"
	"github.com/cory-johannsen/pf2-flat-check/internal/vtt"
)

// ModuleID namespaces this module's world settings.
const ModuleID = "pf2-flat-check"

// SettingHideRollValue is the world setting that hides the rolled number.
const SettingHideRollValue = "hideRollValue"

// MaxRecentMessages caps a single RecentMessages page.
const MaxRecentMessages = 100

var (
	// ErrUnknownSetting is returned for a setting name this module does not register.
	ErrUnknownSetting = errors.New("unknown setting")
	// ErrSettingsUnavailable is returned when the handler was built without a settings store.
	ErrSettingsUnavailable = errors.New("settings store unavailable")
	// ErrInvalidLimit is returned for a RecentMessages limit outside [1, MaxRecentMessages].
	ErrInvalidLimit = errors.New("invalid message limit")
)

// TargetResult is one target's governing condition.
type TargetResult struct {
	Name      string
	Condition string
	DC        int
}

// CheckResult describes a flat check that was rolled and posted.
type CheckResult struct {
	EventID        string
	DC             int
	ActorName      string
	ActorCondition string
	Targets        []TargetResult
	Roll           dice.RollResult
	RollText       string
	Success        bool
	Blind          bool
	Whisper        []string
	Message        postgres.Message
}

// CheckHandler runs the flat check for one roll event: it resolves the
// attacker and every target, rolls once against the highest DC and posts
// the card.
type CheckHandler struct {
	resolver    *flatcheck.Resolver
	conditions  *condition.Registry
	roller      *dice.Roller
	renderer    *Renderer
	messages    MessageStore
	settings    SettingsStore
	presenter   RollPresenter
	hideDefault bool
	logger      *zap.Logger
}

// NewCheckHandler creates a CheckHandler with the given dependencies.
// settings and presenter may be nil; hideDefault is used whenever the
// world setting is unavailable.
//
// Precondition: resolver, conditions, roller, renderer, messages and logger must be non-nil.
func NewCheckHandler(
	resolver *flatcheck.Resolver,
	conditions *condition.Registry,
	roller *dice.Roller,
	renderer *Renderer,
	messages MessageStore,
	settings SettingsStore,
	presenter RollPresenter,
	hideDefault bool,
	logger *zap.Logger,
) *CheckHandler {
	if resolver == nil || conditions == nil || roller == nil || renderer == nil || messages == nil || logger == nil {
		panic("gameserver.NewCheckHandler: required dependency is nil")
	}
	return &CheckHandler{
		resolver:    resolver,
		conditions:  conditions,
		roller:      roller,
		renderer:    renderer,
		messages:    messages,
		settings:    settings,
		presenter:   presenter,
		hideDefault: hideDefault,
		logger:      logger,
	}
}

// HandleRoll evaluates ev and, if any condition applies, rolls and posts a
// flat check card.
//
// Precondition: ev must be non-nil.
// Postcondition: Returns (nil, nil) when no check is called for. Otherwise
// returns the posted result, or a non-nil error if posting failed.
func (h *CheckHandler) HandleRoll(ctx context.Context, ev *vtt.RollEvent) (*CheckResult, error) {
	item, reason := ShouldCheck(ev)
	if item == nil {
		h.logger.Debug("flat check skipped", zap.String("event_id", ev.ID), zap.String("reason", reason))
		return nil, nil
	}
	isSpell := item.IsSpell()
	attacker := ev.Attacker(h.conditions)

	res := &CheckResult{EventID: ev.ID, ActorName: attacker.Name}
	if self := h.resolver.Resolve(attacker, nil, isSpell); !self.Empty() {
		res.ActorCondition = self.Condition
		res.DC = self.DC
	}

	undetected := false
	for _, tok := range ev.Targets() {
		target := vtt.Combatant(&tok, nil, h.conditions)
		r := h.resolver.Resolve(attacker, target, isSpell)
		if r.Empty() {
			continue
		}
		res.Targets = append(res.Targets, TargetResult{Name: target.Name, Condition: r.Condition, DC: r.DC})
		res.DC = max(res.DC, r.DC)
		if tok.Actor.HasCondition(flatcheck.Undetected) {
			undetected = true
		}
	}
	if res.ActorCondition == "" && len(res.Targets) == 0 {
		h.logger.Debug("no flat check conditions", zap.String("event_id", ev.ID), zap.String("item", item.Name))
		return nil, nil
	}

	res.Roll = h.roller.FlatCheck()
	res.Success = flatcheck.Succeeds(res.Roll.Total(), res.DC)
	if undetected {
		res.Blind = true
		res.Whisper = ev.GMIDs()
	}

	if h.presenter != nil {
		h.presenter.ShowRoll(ctx, scripting.RollInfo{
			Expression: res.Roll.Expression,
			Dice:       res.Roll.Dice,
			Total:      res.Roll.Total(),
			DC:         res.DC,
			UserID:     ev.UserID,
			Blind:      res.Blind,
		})
	}

	card := Card{
		DC:             res.DC,
		ActorName:      res.ActorName,
		ActorCondition: res.ActorCondition,
		Targets:        res.Targets,
		RollTotal:      res.Roll.Total(),
		Success:        res.Success,
		HideRollValue:  h.hideRollValue(ctx),
	}
	content, err := h.renderer.Render(card)
	if err != nil {
		return nil, err
	}
	res.RollText = h.renderer.RollText(card)

	msg, err := h.messages.Create(ctx, postgres.Message{
		Speaker: ev.SpeakerName(),
		UserID:  ev.UserID,
		Content: content,
		Style:   card.Style(),
		Whisper: res.Whisper,
		Blind:   res.Blind,
	})
	if err != nil {
		return nil, fmt.Errorf("posting flat check for event %s: %w", ev.ID, err)
	}
	res.Message = msg

	h.logger.Info("flat check",
		zap.String("event_id", ev.ID),
		zap.String("actor", res.ActorName),
		zap.Int("dc", res.DC),
		zap.Int("roll", res.Roll.Total()),
		zap.Bool("success", res.Success),
		zap.Int("targets", len(res.Targets)),
		zap.Bool("blind", res.Blind),
	)
	return res, nil
}

// Resolve exposes the resolver directly for a single attacker/target pair.
// A nil target performs the attacker's self-check.
func (h *CheckHandler) Resolve(attacker, target *vtt.Token, isSpell bool) flatcheck.Resolution {
	a := vtt.Combatant(attacker, nil, h.conditions)
	if target == nil {
		return h.resolver.Resolve(a, nil, isSpell)
	}
	return h.resolver.Resolve(a, vtt.Combatant(target, nil, h.conditions), isSpell)
}

// SetSetting stores one of this module's world settings.
//
// Precondition: name must be SettingHideRollValue.
// Postcondition: Returns ErrUnknownSetting or ErrSettingsUnavailable without
// writing anything; on success later HandleRoll calls observe v.
func (h *CheckHandler) SetSetting(ctx context.Context, name string, v bool) error {
	if name != SettingHideRollValue {
		return fmt.Errorf("%q: %w", name, ErrUnknownSetting)
	}
	if h.settings == nil {
		return ErrSettingsUnavailable
	}
	if err := h.settings.SetBool(ctx, postgres.SettingKey(ModuleID, name), v); err != nil {
		return fmt.Errorf("storing setting %s: %w", name, err)
	}
	h.logger.Info("world setting changed", zap.String("setting", name), zap.Bool("value", v))
	return nil
}

// Setting returns the effective value of one of this module's world
// settings: the stored value, or the configured default when unset.
func (h *CheckHandler) Setting(ctx context.Context, name string) (bool, error) {
	if name != SettingHideRollValue {
		return false, fmt.Errorf("%q: %w", name, ErrUnknownSetting)
	}
	return h.hideRollValue(ctx), nil
}

// RecentMessages returns up to limit posted cards, newest first.
func (h *CheckHandler) RecentMessages(ctx context.Context, limit int) ([]postgres.Message, error) {
	if limit < 1 || limit > MaxRecentMessages {
		return nil, fmt.Errorf("%d not in [1, %d]: %w", limit, MaxRecentMessages, ErrInvalidLimit)
	}
	msgs, err := h.messages.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing chat cards: %w", err)
	}
	return msgs, nil
}

func (h *CheckHandler) hideRollValue(ctx context.Context) bool {
	if h.settings == nil {
		return h.hideDefault
	}
	v, err := h.settings.GetBool(ctx, postgres.SettingKey(ModuleID, SettingHideRollValue))
	switch {
	case err == nil:
		return v
	case errors.Is(err, postgres.ErrSettingNotFound):
		return h.hideDefault
	default:
		h.logger.Warn("reading hideRollValue setting", zap.Error(err))
		return h.hideDefault
	}
}
