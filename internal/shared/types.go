// Package shared holds the JSON wire protocol spoken between browsers and the
// socket server. Every frame is one JSON object discriminated by its "cmd" field.
package shared

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

const (
	CmdChoice = "choice"
	CmdJoin   = "join"
	CmdCreate = "create"
	CmdOffer  = "offer"
	CmdAnswer = "answer"
	CmdICE    = "ice"

	CmdRoom   = "room"
	CmdYou    = "you"
	CmdPlayer = "player"
	CmdChat   = "chat"
	CmdAlert  = "alert"
)

// VacatedSeat is sent as "i" in a player event when that player left the room.
const VacatedSeat = -1

var (
	ErrMissingCommand = errors.New("missing cmd")
	ErrUnknownCommand = errors.New("unknown cmd")
)

var validate = validator.New()

// Player is one seat occupant as seen by clients.
type Player struct {
	ID string `json:"id"`
	C  *uint8 `json:"c,omitempty"`
	I  int    `json:"i"`
}

// SessionDescription mirrors the browser's RTCSessionDescriptionInit.
type SessionDescription struct {
	Type string `json:"type"`
	SDP  string `json:"sdp"`
}

// Request is a decoded inbound command.
type Request interface {
	Cmd() string
	request()
}

type ChoiceCmd struct {
	C *uint8 `json:"c" validate:"required"`
}

type JoinCmd struct {
	Code string `json:"code"`
}

type CreateCmd struct{}

type OfferCmd struct {
	Offer *SessionDescription `json:"offer" validate:"required"`
}

// AnswerCmd carries its description under "offer", same as OfferCmd.
type AnswerCmd struct {
	Offer *SessionDescription `json:"offer" validate:"required"`
}

type ICECmd struct {
	Candidate json.RawMessage `json:"candidate" validate:"required"`
}

func (ChoiceCmd) Cmd() string { return CmdChoice }
func (JoinCmd) Cmd() string   { return CmdJoin }
func (CreateCmd) Cmd() string { return CmdCreate }
func (OfferCmd) Cmd() string  { return CmdOffer }
func (AnswerCmd) Cmd() string { return CmdAnswer }
func (ICECmd) Cmd() string    { return CmdICE }

func (ChoiceCmd) request() {}
func (JoinCmd) request()   {}
func (CreateCmd) request() {}
func (OfferCmd) request()  {}
func (AnswerCmd) request() {}
func (ICECmd) request()    {}

// DecodeRequest parses one inbound frame. Unknown or malformed commands return an error
// and leave the caller free to ignore the frame.
func DecodeRequest(data []byte) (Request, error) {
	var env struct {
		Cmd string `json:"cmd"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	var req Request
	switch env.Cmd {
	case "":
		return nil, ErrMissingCommand
	case CmdChoice:
		req = &ChoiceCmd{}
	case CmdJoin:
		req = &JoinCmd{}
	case CmdCreate:
		return CreateCmd{}, nil
	case CmdOffer:
		req = &OfferCmd{}
	case CmdAnswer:
		req = &AnswerCmd{}
	case CmdICE:
		req = &ICECmd{}
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownCommand, env.Cmd)
	}

	if err := json.Unmarshal(data, req); err != nil {
		return nil, fmt.Errorf("decode %s: %w", env.Cmd, err)
	}
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", env.Cmd, err)
	}

	switch r := req.(type) {
	case *ChoiceCmd:
		return *r, nil
	case *JoinCmd:
		return *r, nil
	case *OfferCmd:
		return *r, nil
	case *AnswerCmd:
		return *r, nil
	case *ICECmd:
		return *r, nil
	}
	return req, nil
}

// Response is an outbound event. The set of implementations is closed.
type Response interface {
	Cmd() string
	json.Marshaler
	response()
}

// RoomMsg is a full room snapshot, one entry per seat; nil entries are vacant seats.
// An empty Code signals that the requested room does not exist.
type RoomMsg struct {
	Code    string    `json:"code"`
	Players []*Player `json:"players"`
}

type YouMsg struct {
	Player
}

type PlayerMsg struct {
	Player
}

type ChatMsg struct {
	Msg string `json:"msg"`
}

type AlertMsg struct {
	Msg string `json:"msg"`
}

type OfferMsg struct {
	Offer SessionDescription `json:"offer"`
}

type AnswerMsg struct {
	Offer SessionDescription `json:"offer"`
}

type ICEMsg struct {
	Candidate json.RawMessage `json:"candidate"`
}

func (RoomMsg) Cmd() string   { return CmdRoom }
func (YouMsg) Cmd() string    { return CmdYou }
func (PlayerMsg) Cmd() string { return CmdPlayer }
func (ChatMsg) Cmd() string   { return CmdChat }
func (AlertMsg) Cmd() string  { return CmdAlert }
func (OfferMsg) Cmd() string  { return CmdOffer }
func (AnswerMsg) Cmd() string { return CmdAnswer }
func (ICEMsg) Cmd() string    { return CmdICE }

func (RoomMsg) response()   {}
func (YouMsg) response()    {}
func (PlayerMsg) response() {}
func (ChatMsg) response()   {}
func (AlertMsg) response()  {}
func (OfferMsg) response()  {}
func (AnswerMsg) response() {}
func (ICEMsg) response()    {}

func (m RoomMsg) MarshalJSON() ([]byte, error) {
	type body RoomMsg
	if m.Players == nil {
		m.Players = []*Player{}
	}
	return json.Marshal(struct {
		Cmd string `json:"cmd"`
		body
	}{CmdRoom, body(m)})
}

func (m YouMsg) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Cmd string `json:"cmd"`
		Player
	}{CmdYou, m.Player})
}

func (m PlayerMsg) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Cmd string `json:"cmd"`
		Player
	}{CmdPlayer, m.Player})
}

func (m ChatMsg) MarshalJSON() ([]byte, error) {
	type body ChatMsg
	return json.Marshal(struct {
		Cmd string `json:"cmd"`
		body
	}{CmdChat, body(m)})
}

func (m AlertMsg) MarshalJSON() ([]byte, error) {
	type body AlertMsg
	return json.Marshal(struct {
		Cmd string `json:"cmd"`
		body
	}{CmdAlert, body(m)})
}

func (m OfferMsg) MarshalJSON() ([]byte, error) {
	type body OfferMsg
	return json.Marshal(struct {
		Cmd string `json:"cmd"`
		body
	}{CmdOffer, body(m)})
}

func (m AnswerMsg) MarshalJSON() ([]byte, error) {
	type body AnswerMsg
	return json.Marshal(struct {
		Cmd string `json:"cmd"`
		body
	}{CmdAnswer, body(m)})
}

func (m ICEMsg) MarshalJSON() ([]byte, error) {
	type body ICEMsg
	if m.Candidate == nil {
		m.Candidate = json.RawMessage("null")
	}
	return json.Marshal(struct {
		Cmd string `json:"cmd"`
		body
	}{CmdICE, body(m)})
}

// Encode renders an outbound event as a single text frame.
func Encode(r Response) ([]byte, error) {
	return json.Marshal(r)
}
