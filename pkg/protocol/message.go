// Package protocol defines the WebSocket messages exchanged between a pose
// client (browser running the landmark estimator) and the coach service.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/teslashibe/go-posecoach/pkg/pose"
)

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Client → Server messages
	TypeFrame            MessageType = "frame"             // Landmark frame
	TypeStart            MessageType = "start"             // Start the session timer
	TypeStop             MessageType = "stop"              // Stop the session timer
	TypeArm              MessageType = "arm"               // Arm auto-start
	TypeSelectProfile    MessageType = "select_profile"    // Switch reference pose
	TypeCaptureReference MessageType = "capture_reference" // Capture current pose as reference

	// Server → Client messages
	TypeSession MessageType = "session" // Session attached
	TypeScore   MessageType = "score"   // Per-frame score
	TypeTimer   MessageType = "timer"   // Timer snapshot
	TypeProfile MessageType = "profile" // Active profile
	TypeSummary MessageType = "summary" // Finished session
	TypeError   MessageType = "error"   // Request failed

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

// Message is the base wrapper for all WebSocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("failed to parse message: missing type")
	}
	return &msg, nil
}

// =============================================================================
// Client → Server Message Types
// =============================================================================

// FrameData carries one estimator sample in MediaPipe landmark order.
type FrameData struct {
	FrameID   uint64       `json:"frame_id,omitempty"`
	Landmarks []pose.Point `json:"landmarks"`
}

// Frame converts the landmark list into a pose.Frame.
func (f *FrameData) Frame() pose.Frame {
	return pose.FrameFromPoints(f.Landmarks)
}

// SelectProfileData switches the active reference profile.
type SelectProfileData struct {
	ProfileID string `json:"profile_id"`
}

// CaptureReferenceData captures the current smoothed pose as a new profile.
type CaptureReferenceData struct {
	Name   string `json:"name,omitempty"`
	Select bool   `json:"select,omitempty"` // Make it the active profile
}

// =============================================================================
// Server → Client Message Types
// =============================================================================

// SessionData announces the session a connection is attached to.
type SessionData struct {
	ID        string `json:"id"`
	ProfileID string `json:"profile_id"`
	AutoStart bool   `json:"auto_start"`
}

// ScoreData is the outcome of one frame.
type ScoreData struct {
	FrameID          uint64                 `json:"frame_id,omitempty"`
	Score            float64                `json:"score"`
	RawScore         float64                `json:"raw_score"`
	Orientation      string                 `json:"orientation"`
	VisibleCount     int                    `json:"visible_count"`
	PassRatio        float64                `json:"pass_ratio"`
	NearPerfectRatio float64                `json:"near_perfect_ratio"`
	Diffs            map[pose.Joint]float64 `json:"diffs,omitempty"`
	Hints            []HintData             `json:"hints,omitempty"`
}

// HintData names a joint that is off the reference.
type HintData struct {
	Joint   string  `json:"joint"`
	DiffDeg float64 `json:"diff_deg"`
}

// TimerData is a timer snapshot.
type TimerData struct {
	Phase              string  `json:"phase"` // "idle", "running"
	Elapsed            string  `json:"elapsed"`
	ElapsedSeconds     int     `json:"elapsed_seconds"`
	CorrectHeldSeconds int     `json:"correct_held_seconds"`
	Accuracy           int     `json:"accuracy"`
	LastScore          float64 `json:"last_score"`
	Armed              bool    `json:"armed"`
}

// ProfileData describes a reference profile.
type ProfileData struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	Description  string                 `json:"description,omitempty"`
	Angles       pose.AngleSet          `json:"angles"`
	Weights      map[pose.Joint]float64 `json:"weights"`
	ToleranceDeg float64                `json:"tolerance_deg"`
	BuiltIn      bool                   `json:"built_in"`
}

// SummaryData describes a finished session.
type SummaryData struct {
	SessionID          string  `json:"session_id"`
	ProfileID          string  `json:"profile_id"`
	Elapsed            string  `json:"elapsed"`
	ElapsedSeconds     int     `json:"elapsed_seconds"`
	CorrectHeldSeconds int     `json:"correct_held_seconds"`
	Accuracy           int     `json:"accuracy"`
	MeanScore          float64 `json:"mean_score"`
	BestScore          float64 `json:"best_score"`
	Frames             int     `json:"frames"`
	StartedAt          int64   `json:"started_at"` // Unix milliseconds
	EndedAt            int64   `json:"ended_at"`   // Unix milliseconds
}

// ErrorData reports a rejected request.
type ErrorData struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Request MessageType `json:"request,omitempty"`
}

// Error codes
const (
	CodeBadRequest = "bad_request"
	CodeNotFound   = "not_found"
	CodeNoPose     = "no_pose"
	CodeInternal   = "internal"
)

// =============================================================================
// Bidirectional Message Types
// =============================================================================

// PingData contains ping information
type PingData struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// PongData contains pong response
type PongData struct {
	ID        string `json:"id"`
	PingTS    int64  `json:"ping_ts"`
	PongTS    int64  `json:"pong_ts"`
	LatencyMs int64  `json:"latency_ms"`
}
