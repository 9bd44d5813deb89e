package gameserver

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/cory-johannsen/pf2-flat-check/internal/game/flatcheck"
	"github.com/cory-johannsen/pf2-flat-check/internal/storage/postgres"
	"github.com/cory-johannsen/pf2-flat-check/internal/vtt"
)

// FlatCheckClient calls FlatCheckService.
type FlatCheckClient struct {
	cc grpc.ClientConnInterface
}

// NewFlatCheckClient wraps cc.
//
// Precondition: cc must be non-nil.
func NewFlatCheckClient(cc grpc.ClientConnInterface) *FlatCheckClient {
	return &FlatCheckClient{cc: cc}
}

// EvaluateDocument sends a raw roll event document.
func (c *FlatCheckClient) EvaluateDocument(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, EvaluateMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Evaluate sends ev and returns the server's result document, which is
// empty when no check was needed.
func (c *FlatCheckClient) Evaluate(ctx context.Context, ev *vtt.RollEvent, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := toStruct(ev)
	if err != nil {
		return nil, err
	}
	return c.EvaluateDocument(ctx, in, opts...)
}

// Resolve asks the server for the governing condition between attacker and
// target. A nil target requests the attacker's self-check.
func (c *FlatCheckClient) Resolve(ctx context.Context, attacker, target *vtt.Token, isSpell bool, opts ...grpc.CallOption) (flatcheck.Resolution, error) {
	attackerDoc, err := vtt.Document(attacker)
	if err != nil {
		return flatcheck.Resolution{}, fmt.Errorf("encoding attacker: %w", err)
	}
	doc := map[string]any{"attacker": attackerDoc, "is_spell": isSpell}
	if target != nil {
		targetDoc, err := vtt.Document(target)
		if err != nil {
			return flatcheck.Resolution{}, fmt.Errorf("encoding target: %w", err)
		}
		doc["target"] = targetDoc
	}
	in, err := structpb.NewStruct(doc)
	if err != nil {
		return flatcheck.Resolution{}, fmt.Errorf("encoding request: %w", err)
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ResolveMethod, in, out, opts...); err != nil {
		return flatcheck.Resolution{}, err
	}
	return decodeResolution(out)
}

// GetSetting returns the effective value of a world setting.
func (c *FlatCheckClient) GetSetting(ctx context.Context, key string, opts ...grpc.CallOption) (bool, error) {
	in, err := structpb.NewStruct(map[string]any{"key": key})
	if err != nil {
		return false, fmt.Errorf("encoding request: %w", err)
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetSettingMethod, in, out, opts...); err != nil {
		return false, err
	}
	v, ok := out.AsMap()["value"].(bool)
	if !ok {
		return false, fmt.Errorf("setting %s: response missing value", key)
	}
	return v, nil
}

// SetSetting stores a world setting.
func (c *FlatCheckClient) SetSetting(ctx context.Context, key string, v bool, opts ...grpc.CallOption) error {
	in, err := structpb.NewStruct(map[string]any{"key": key, "value": v})
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}
	return c.cc.Invoke(ctx, SetSettingMethod, in, new(structpb.Struct), opts...)
}

// ListMessages returns up to limit posted cards, newest first.
func (c *FlatCheckClient) ListMessages(ctx context.Context, limit int, opts ...grpc.CallOption) ([]postgres.Message, error) {
	in, err := structpb.NewStruct(map[string]any{"limit": limit})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ListMessagesMethod, in, out, opts...); err != nil {
		return nil, err
	}
	raw, _ := out.AsMap()["messages"].([]any)
	msgs := make([]postgres.Message, 0, len(raw))
	for i, r := range raw {
		doc, ok := r.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("message %d: not an object", i)
		}
		m, err := decodeMessage(doc)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

func decodeMessage(doc map[string]any) (postgres.Message, error) {
	var m postgres.Message
	id, _ := doc["id"].(string)
	parsed, err := uuid.Parse(id)
	if err != nil {
		return m, fmt.Errorf("parsing id %q: %w", id, err)
	}
	m.ID = parsed
	m.Speaker, _ = doc["speaker"].(string)
	m.UserID, _ = doc["user_id"].(string)
	m.Content, _ = doc["content"].(string)
	m.Style, _ = doc["style"].(string)
	m.Blind, _ = doc["blind"].(bool)
	if ws, ok := doc["whisper"].([]any); ok {
		for _, w := range ws {
			if s, ok := w.(string); ok {
				m.Whisper = append(m.Whisper, s)
			}
		}
	}
	if ts, ok := doc["created_at"].(string); ok {
		if m.CreatedAt, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return m, fmt.Errorf("parsing created_at %q: %w", ts, err)
		}
	}
	return m, nil
}

func toStruct(v any) (*structpb.Struct, error) {
	doc, err := vtt.Document(v)
	if err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	return structpb.NewStruct(doc)
}

func decodeResolution(out *structpb.Struct) (flatcheck.Resolution, error) {
	doc := out.AsMap()
	if len(doc) == 0 {
		return flatcheck.Resolution{}, nil
	}
	cond, ok := doc["condition"].(string)
	if !ok {
		return flatcheck.Resolution{}, fmt.Errorf("resolution missing condition")
	}
	dc, ok := doc["dc"].(float64)
	if !ok {
		return flatcheck.Resolution{}, fmt.Errorf("resolution missing dc")
	}
	return flatcheck.Resolution{Condition: cond, DC: int(dc)}, nil
}
