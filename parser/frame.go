package parser

import (
	"github.com/arloliu/cesrparse/attach"
	"github.com/arloliu/cesrparse/codes"
	"github.com/arloliu/cesrparse/serder"
)

// Frame is one complete decoded CESR message: its envelope (native or
// foreign-serialized) and the ordered attachment groups that follow it.
type Frame struct {
	Serder      serder.Envelope
	Native      *NativeBody
	Versionage  codes.Versionage
	Attachments []attach.Group
}

// NativeField is one tokenized element of a native (FixBody/MapBody) frame
// body: an optional map label followed by a primitive or nested group code.
type NativeField struct {
	Label *string
	Code  string
	QB64  string
	// Nested holds the decoded group when Code designates a counter rather
	// than a primitive; nil for ordinary matter/indexer fields.
	Nested *attach.Group
}

// NativeBody is the tokenized field sequence of a FixBodyGroup/MapBodyGroup
// payload.
type NativeBody struct {
	BodyCode string
	IsMap    bool
	Fields   []NativeField
}

// stopReason records why parseFrame's attachment loop ended, so the engine
// can distinguish "buffer ran out, more attachments might still arrive"
// (Pending) from "a message boundary or framed cutoff ended this frame for
// good" (emit now).
type stopReason int

const (
	stopExhausted stopReason = iota
	stopMessage
	stopFramed
)
