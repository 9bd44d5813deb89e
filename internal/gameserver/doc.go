// Package gameserver provides the flat check orchestrator and its gRPC
// bridge service.
//
// A CheckHandler receives a chat roll event, decides whether it calls for a
// flat check, resolves the attacker and every target, rolls once against the
// highest DC and stores the rendered chat card. FlatCheckService exposes the
// handler over gRPC with google.protobuf.Struct payloads.
package gameserver
