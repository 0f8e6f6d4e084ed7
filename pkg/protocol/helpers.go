package protocol

import (
	"time"

	"github.com/teslashibe/go-posecoach/pkg/pose"
)

// =============================================================================
// Helper functions for creating messages
// =============================================================================

// NewFrameMessage creates a frame message
func NewFrameMessage(frameID uint64, landmarks []pose.Point) (*Message, error) {
	return NewMessage(TypeFrame, FrameData{FrameID: frameID, Landmarks: landmarks})
}

// NewControlMessage creates a data-less control message (start, stop, arm)
func NewControlMessage(msgType MessageType) (*Message, error) {
	return NewMessage(msgType, nil)
}

// NewSelectProfileMessage creates a profile selection message
func NewSelectProfileMessage(profileID string) (*Message, error) {
	return NewMessage(TypeSelectProfile, SelectProfileData{ProfileID: profileID})
}

// NewCaptureReferenceMessage creates a capture request
func NewCaptureReferenceMessage(name string, selectIt bool) (*Message, error) {
	return NewMessage(TypeCaptureReference, CaptureReferenceData{Name: name, Select: selectIt})
}

// NewErrorMessage creates an error message
func NewErrorMessage(code, message string, request MessageType) (*Message, error) {
	return NewMessage(TypeError, ErrorData{Code: code, Message: message, Request: request})
}

// NewPingMessage creates a ping message
func NewPingMessage(id string) (*Message, error) {
	return NewMessage(TypePing, PingData{
		ID:        id,
		Timestamp: time.Now().UnixMilli(),
	})
}

// NewPongMessage creates a pong response message
func NewPongMessage(id string, pingTS, pongTS int64) (*Message, error) {
	return NewMessage(TypePong, PongData{
		ID:        id,
		PingTS:    pingTS,
		PongTS:    pongTS,
		LatencyMs: pongTS - pingTS,
	})
}

// =============================================================================
// Helper functions for parsing messages
// =============================================================================

// GetFrameData extracts frame data from a message
func (m *Message) GetFrameData() (*FrameData, error) {
	var data FrameData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetSelectProfileData extracts a profile selection from a message
func (m *Message) GetSelectProfileData() (*SelectProfileData, error) {
	var data SelectProfileData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetCaptureReferenceData extracts a capture request from a message
func (m *Message) GetCaptureReferenceData() (*CaptureReferenceData, error) {
	var data CaptureReferenceData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetScoreData extracts score data from a message
func (m *Message) GetScoreData() (*ScoreData, error) {
	var data ScoreData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetTimerData extracts timer data from a message
func (m *Message) GetTimerData() (*TimerData, error) {
	var data TimerData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetSessionData extracts session data from a message
func (m *Message) GetSessionData() (*SessionData, error) {
	var data SessionData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetProfileData extracts profile data from a message
func (m *Message) GetProfileData() (*ProfileData, error) {
	var data ProfileData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetSummaryData extracts summary data from a message
func (m *Message) GetSummaryData() (*SummaryData, error) {
	var data SummaryData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetErrorData extracts error data from a message
func (m *Message) GetErrorData() (*ErrorData, error) {
	var data ErrorData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPingData extracts ping data from a message
func (m *Message) GetPingData() (*PingData, error) {
	var data PingData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPongData extracts pong data from a message
func (m *Message) GetPongData() (*PongData, error) {
	var data PongData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
