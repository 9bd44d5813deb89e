package vtt

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"
)

// Decode builds a RollEvent from a loosely typed document such as a
// structpb.Struct's AsMap. Numbers may arrive as float64 or strings.
//
// Postcondition: Returns a populated RollEvent or a non-nil error.
func Decode(doc map[string]any) (*RollEvent, error) {
	var ev RollEvent
	if err := decodeInto(doc, &ev); err != nil {
		return nil, fmt.Errorf("decoding roll event: %w", err)
	}
	return &ev, nil
}

// DecodeToken builds a Token from a loosely typed document.
func DecodeToken(doc map[string]any) (*Token, error) {
	var tok Token
	if err := decodeInto(doc, &tok); err != nil {
		return nil, fmt.Errorf("decoding token: %w", err)
	}
	return &tok, nil
}

func decodeInto(doc map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(doc)
}

// Document renders v (a RollEvent, Token, or any yaml-tagged value) as a
// plain map suitable for structpb.NewStruct.
func Document(v any) (map[string]any, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("re-reading document: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}
