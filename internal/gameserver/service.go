package gameserver

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/cory-johannsen/pf2-flat-check/internal/storage/postgres"
	"github.com/cory-johannsen/pf2-flat-check/internal/vtt"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "flatcheck.v1.FlatCheckService"

// Full method names.
const (
	EvaluateMethod     = "/" + ServiceName + "/Evaluate"
	ResolveMethod      = "/" + ServiceName + "/Resolve"
	GetSettingMethod   = "/" + ServiceName + "/GetSetting"
	SetSettingMethod   = "/" + ServiceName + "/SetSetting"
	ListMessagesMethod = "/" + ServiceName + "/ListMessages"
)

// FlatCheckServer is the server API for FlatCheckService. Payloads are
// google.protobuf.Struct documents in the vtt snake_case shape.
type FlatCheckServer interface {
	// Evaluate runs the full check for one roll event document.
	Evaluate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// Resolve resolves one attacker/target pair:
	// {"attacker": Token, "target": Token?, "is_spell": bool}.
	Resolve(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// GetSetting reads a world setting: {"key": string} -> {"key", "value"}.
	GetSetting(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// SetSetting writes a world setting: {"key": string, "value": bool} -> {"key", "value"}.
	SetSetting(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// ListMessages returns posted cards, newest first: {"limit": n} -> {"messages": [...]}.
	ListMessages(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// FlatCheckServiceDesc describes FlatCheckService for grpc.Server.RegisterService.
var FlatCheckServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FlatCheckServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Evaluate", Handler: unaryHandler(EvaluateMethod, FlatCheckServer.Evaluate)},
		{MethodName: "Resolve", Handler: unaryHandler(ResolveMethod, FlatCheckServer.Resolve)},
		{MethodName: "GetSetting", Handler: unaryHandler(GetSettingMethod, FlatCheckServer.GetSetting)},
		{MethodName: "SetSetting", Handler: unaryHandler(SetSettingMethod, FlatCheckServer.SetSetting)},
		{MethodName: "ListMessages", Handler: unaryHandler(ListMessagesMethod, FlatCheckServer.ListMessages)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "flatcheck/v1/flatcheck.proto",
}

// RegisterFlatCheckServer registers srv and marks it SERVING on a new
// health server, which is also registered and returned.
func RegisterFlatCheckServer(s *grpc.Server, srv FlatCheckServer) *health.Server {
	s.RegisterService(&FlatCheckServiceDesc, srv)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return hs
}

// unaryHandler adapts one Struct-in Struct-out method to grpc.MethodHandler.
func unaryHandler(fullMethod string, call func(FlatCheckServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(FlatCheckServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return call(srv.(FlatCheckServer), ctx, req.(*structpb.Struct))
		})
	}
}

// FlatCheckService implements FlatCheckServer over a CheckHandler.
type FlatCheckService struct {
	checks *CheckHandler
	logger *zap.Logger
}

// NewFlatCheckService creates the gRPC service.
//
// Precondition: checks and logger must be non-nil.
func NewFlatCheckService(checks *CheckHandler, logger *zap.Logger) *FlatCheckService {
	return &FlatCheckService{checks: checks, logger: logger}
}

// Evaluate decodes a roll event and runs the check. An event that needs no
// check yields an empty Struct.
//
// Postcondition: Decode failures return codes.InvalidArgument; posting failures codes.Internal.
func (s *FlatCheckService) Evaluate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ev, err := vtt.Decode(req.AsMap())
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "decoding roll event: %v", err)
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	res, err := s.checks.HandleRoll(ctx, ev)
	if err != nil {
		s.logger.Error("evaluating roll event", zap.String("event_id", ev.ID), zap.Error(err))
		return nil, status.Errorf(codes.Internal, "evaluating event %s: %v", ev.ID, err)
	}
	if res == nil {
		return &structpb.Struct{Fields: map[string]*structpb.Value{}}, nil
	}
	out, err := structpb.NewStruct(resultDocument(res))
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encoding result: %v", err)
	}
	return out, nil
}

// Resolve resolves one attacker/target pair without rolling or posting.
//
// Postcondition: Returns {"condition", "dc"}, or an empty Struct when nothing applies.
func (s *FlatCheckService) Resolve(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	doc := req.AsMap()
	attackerDoc, ok := doc["attacker"].(map[string]any)
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "attacker token is required")
	}
	attacker, err := vtt.DecodeToken(attackerDoc)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "decoding attacker: %v", err)
	}
	var target *vtt.Token
	if raw, present := doc["target"]; present && raw != nil {
		targetDoc, ok := raw.(map[string]any)
		if !ok {
			return nil, status.Error(codes.InvalidArgument, "target must be a token object")
		}
		if target, err = vtt.DecodeToken(targetDoc); err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "decoding target: %v", err)
		}
	}
	isSpell, _ := doc["is_spell"].(bool)

	r := s.checks.Resolve(attacker, target, isSpell)
	fields := map[string]any{}
	if !r.Empty() {
		fields["condition"] = r.Condition
		fields["dc"] = r.DC
	}
	return structpb.NewStruct(fields)
}

// GetSetting returns the effective value of a world setting.
func (s *FlatCheckService) GetSetting(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	key, ok := req.AsMap()["key"].(string)
	if !ok || key == "" {
		return nil, status.Error(codes.InvalidArgument, "key is required")
	}
	v, err := s.checks.Setting(ctx, key)
	if err != nil {
		return nil, settingStatus(err)
	}
	return structpb.NewStruct(map[string]any{"key": key, "value": v})
}

// SetSetting stores a world setting; the next Evaluate observes it.
//
// Postcondition: Unknown keys return codes.InvalidArgument; a server without
// a settings store returns codes.FailedPrecondition.
func (s *FlatCheckService) SetSetting(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	doc := req.AsMap()
	key, ok := doc["key"].(string)
	if !ok || key == "" {
		return nil, status.Error(codes.InvalidArgument, "key is required")
	}
	v, ok := doc["value"].(bool)
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "value must be a bool")
	}
	if err := s.checks.SetSetting(ctx, key, v); err != nil {
		return nil, settingStatus(err)
	}
	return structpb.NewStruct(map[string]any{"key": key, "value": v})
}

// ListMessages returns the most recent posted cards, newest first.
func (s *FlatCheckService) ListMessages(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	raw, ok := req.AsMap()["limit"].(float64)
	if !ok || raw != math.Trunc(raw) {
		return nil, status.Error(codes.InvalidArgument, "limit must be an integer")
	}
	msgs, err := s.checks.RecentMessages(ctx, int(raw))
	switch {
	case errors.Is(err, ErrInvalidLimit):
		return nil, status.Error(codes.InvalidArgument, err.Error())
	case err != nil:
		s.logger.Error("listing chat cards", zap.Error(err))
		return nil, status.Errorf(codes.Internal, "listing messages: %v", err)
	}
	out := make([]any, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messageDocument(m))
	}
	return structpb.NewStruct(map[string]any{"messages": out})
}

func settingStatus(err error) error {
	switch {
	case errors.Is(err, ErrUnknownSetting):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ErrSettingsUnavailable):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Errorf(codes.Internal, "setting: %v", err)
	}
}

func messageDocument(m postgres.Message) map[string]any {
	whisper := make([]any, 0, len(m.Whisper))
	for _, id := range m.Whisper {
		whisper = append(whisper, id)
	}
	return map[string]any{
		"id":         m.ID.String(),
		"speaker":    m.Speaker,
		"user_id":    m.UserID,
		"content":    m.Content,
		"style":      m.Style,
		"whisper":    whisper,
		"blind":      m.Blind,
		"created_at": m.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func resultDocument(res *CheckResult) map[string]any {
	targets := make([]any, 0, len(res.Targets))
	for _, t := range res.Targets {
		targets = append(targets, map[string]any{"name": t.Name, "condition": t.Condition, "dc": t.DC})
	}
	dice := make([]any, 0, len(res.Roll.Dice))
	for _, d := range res.Roll.Dice {
		dice = append(dice, d)
	}
	whisper := make([]any, 0, len(res.Whisper))
	for _, id := range res.Whisper {
		whisper = append(whisper, id)
	}
	return map[string]any{
		"event_id": res.EventID,
		"dc":       res.DC,
		"actor": map[string]any{
			"name":      res.ActorName,
			"condition": res.ActorCondition,
		},
		"targets": targets,
		"roll": map[string]any{
			"expression": res.Roll.Expression,
			"dice":       dice,
			"total":      res.Roll.Total(),
		},
		"roll_text":  res.RollText,
		"success":    res.Success,
		"blind":      res.Blind,
		"whisper":    whisper,
		"message_id": res.Message.ID.String(),
		"content":    res.Message.Content,
		"style":      res.Message.Style,
	}
}
